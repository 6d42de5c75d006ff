package runner

import (
	"errors"
	"strings"
	"testing"

	"frogmpeg/internal/command"
	"frogmpeg/internal/config"
	"frogmpeg/internal/mocks"
	"frogmpeg/internal/scanner"
)

func testJob(useGPU bool) command.Job {
	cfg := config.Default()
	cfg.Encoding.UseGPU = useGPU
	seq := scanner.Sequence{
		Dir:         "renders/shot01",
		Prefix:      "frame_",
		PadWidth:    4,
		StartNumber: 1,
		FrameCount:  10,
		Extension:   "jpeg",
	}
	preset := config.Preset{Name: "fulldome-2k", Resolution: "2048x2048", Bitrate: "100M", FPS: 60}
	return command.NewJob(cfg, "shot01", seq, preset, "output/shot01.mp4")
}

func newTestRunner(exec *mocks.MockExecutor) *Runner {
	return &Runner{FFmpegPath: "ffmpeg", Executor: exec}
}

func TestRunPrimarySucceeds(t *testing.T) {
	exec := mocks.NewMockExecutor()
	exec.Results = []mocks.MockResult{mocks.Succeed("frame= 10")}

	result, err := newTestRunner(exec).Run(testJob(true))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.Calls) != 1 {
		t.Errorf("got %d invocations, want 1 (no fallback on success)", len(exec.Calls))
	}
	if result.FellBack() {
		t.Error("FellBack = true for a primary success")
	}
}

func TestRunFallsBackExactlyOnce(t *testing.T) {
	exec := mocks.NewMockExecutor()
	exec.Results = []mocks.MockResult{
		mocks.Fail("nvenc not available"),
		mocks.Succeed("frame= 10"),
	}

	result, err := newTestRunner(exec).Run(testJob(true))
	if err != nil {
		t.Fatalf("Run failed after fallback: %v", err)
	}
	if len(exec.Calls) != 2 {
		t.Fatalf("got %d invocations, want exactly 2", len(exec.Calls))
	}
	if !result.FellBack() {
		t.Error("FellBack = false after a fallback success")
	}

	// The second invocation must be the software codec.
	fallback := strings.Join(exec.Calls[1].Args, " ")
	if !strings.Contains(fallback, "libx264") {
		t.Errorf("fallback invocation does not use libx264: %s", fallback)
	}
	if strings.Contains(fallback, "nvenc") {
		t.Errorf("fallback invocation still uses nvenc: %s", fallback)
	}
}

func TestRunBothAttemptsFail(t *testing.T) {
	exec := mocks.NewMockExecutor()
	exec.Results = []mocks.MockResult{
		mocks.Fail("nvenc error output"),
		mocks.Fail("x264 error output"),
	}

	result, err := newTestRunner(exec).Run(testJob(true))
	if err == nil {
		t.Fatal("expected an error when every invocation fails")
	}
	// Exactly one fallback attempt, never more.
	if len(exec.Calls) != 2 {
		t.Fatalf("got %d invocations, want exactly 2", len(exec.Calls))
	}
	if len(result.Attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(result.Attempts))
	}

	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected *JobError, got %T", err)
	}
	// Captured output of both attempts is carried for diagnostics.
	msg := jobErr.Error()
	for _, want := range []string{"nvenc error output", "x264 error output", "2 attempt(s)"} {
		if !strings.Contains(msg, want) {
			t.Errorf("JobError %q missing %q", msg, want)
		}
	}
}

func TestRunSoftwareOnlyJobHasNoFallback(t *testing.T) {
	exec := mocks.NewMockExecutor()
	exec.Results = []mocks.MockResult{mocks.Fail("boom")}

	_, err := newTestRunner(exec).Run(testJob(false))
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(exec.Calls) != 1 {
		t.Errorf("got %d invocations, want 1 (no fallback without acceleration)", len(exec.Calls))
	}
}

func TestRunUsesConfiguredEncoderPath(t *testing.T) {
	exec := mocks.NewMockExecutor()
	r := &Runner{FFmpegPath: "/opt/ffmpeg/bin/ffmpeg", Executor: exec}
	if _, err := r.Run(testJob(false)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if exec.Calls[0].Name != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("executable = %q, want the configured path", exec.Calls[0].Name)
	}
}
