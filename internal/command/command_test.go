package command

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"frogmpeg/internal/config"
	"frogmpeg/internal/scanner"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.OutputFolder = "output"
	return cfg
}

func testSequence() scanner.Sequence {
	return scanner.Sequence{
		Dir:         filepath.Join("renders", "shot01"),
		Prefix:      "frame_",
		PadWidth:    4,
		StartNumber: 1,
		FrameCount:  10,
		Extension:   "jpeg",
	}
}

func fulldomePreset() config.Preset {
	return config.Preset{Name: "fulldome-2k", Resolution: "2048x2048", Bitrate: "100M", FPS: 60}
}

// argValue returns the value following a flag in an argument list.
func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestBuildArgsDeterminism(t *testing.T) {
	cfg := testConfig()
	seq := testSequence()
	preset := fulldomePreset()
	out := filepath.Join("output", "shot01.mp4")

	first := BuildArgs(cfg, seq, preset, out, true)
	second := BuildArgs(cfg, seq, preset, out, true)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different argument lists:\n%v\n%v", first, second)
	}
}

func TestBuildArgsGPU(t *testing.T) {
	cfg := testConfig()
	args := BuildArgs(cfg, testSequence(), fulldomePreset(), filepath.Join("output", "shot01.mp4"), true)

	checks := map[string]string{
		"-f":             "image2",
		"-framerate":     "60",
		"-start_number":  "1",
		"-i":             filepath.Join("renders", "shot01", "frame_%04d.jpeg"),
		"-vf":            "scale=2048:2048",
		"-c:v":           "h264_nvenc",
		"-preset":        "p7",
		"-rc":            "vbr",
		"-b:v":           "100M",
		"-maxrate":       "100M",
		"-bufsize":       "100M",
		"-g":             "60",
		"-bf":            "3",
		"-rc-lookahead":  "32",
		"-spatial-aq":    "1",
		"-temporal-aq":   "1",
		"-pix_fmt":       "yuv420p",
		"-loglevel":      "error",
	}
	for flag, want := range checks {
		if got := argValue(args, flag); got != want {
			t.Errorf("%s = %q, want %q", flag, got, want)
		}
	}
	if args[len(args)-1] != filepath.Join("output", "shot01.mp4") {
		t.Errorf("last argument = %q, want the output path", args[len(args)-1])
	}
}

func TestBuildArgsCPU(t *testing.T) {
	cfg := testConfig()
	args := BuildArgs(cfg, testSequence(), fulldomePreset(), filepath.Join("output", "shot01.mp4"), false)

	checks := map[string]string{
		"-c:v":    "libx264",
		"-preset": "veryslow",
		"-tune":   "animation",
		"-b:v":    "100M",
		"-g":      "60",
		"-bf":     "3",
	}
	for flag, want := range checks {
		if got := argValue(args, flag); got != want {
			t.Errorf("%s = %q, want %q", flag, got, want)
		}
	}

	joined := strings.Join(args, " ")
	for _, gpuOnly := range []string{"nvenc", "-rc-lookahead", "-spatial-aq", "-temporal-aq", "-maxrate"} {
		if strings.Contains(joined, gpuOnly) {
			t.Errorf("CPU arguments contain GPU flag %q: %v", gpuOnly, args)
		}
	}
}

func TestNewJobInvocationVariants(t *testing.T) {
	seq := testSequence()
	preset := fulldomePreset()
	out := filepath.Join("output", "shot01.mp4")

	t.Run("hardware acceleration enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Encoding.UseGPU = true
		job := NewJob(cfg, "shot01", seq, preset, out)
		if len(job.Invocations) != 2 {
			t.Fatalf("got %d invocations, want primary + fallback", len(job.Invocations))
		}
		if job.Invocations[0].Label != "h264_nvenc" || job.Invocations[1].Label != "libx264" {
			t.Errorf("unexpected invocation order: %s, %s", job.Invocations[0].Label, job.Invocations[1].Label)
		}
	})

	t.Run("hardware acceleration disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Encoding.UseGPU = false
		job := NewJob(cfg, "shot01", seq, preset, out)
		if len(job.Invocations) != 1 {
			t.Fatalf("got %d invocations, want CPU only", len(job.Invocations))
		}
		if job.Invocations[0].Label != "libx264" {
			t.Errorf("invocation label = %q, want libx264", job.Invocations[0].Label)
		}
	})
}

func TestOutputPath(t *testing.T) {
	t.Run("plain name when free", func(t *testing.T) {
		got := OutputPath("output", "shot01", func(string) bool { return false })
		want := filepath.Join("output", "shot01.mp4")
		if got != want {
			t.Errorf("OutputPath = %q, want %q", got, want)
		}
	})

	t.Run("suffix on collision", func(t *testing.T) {
		taken := map[string]bool{
			filepath.Join("output", "shot01.mp4"):   true,
			filepath.Join("output", "shot01_1.mp4"): true,
		}
		got := OutputPath("output", "shot01", func(p string) bool { return taken[p] })
		want := filepath.Join("output", "shot01_2.mp4")
		if got != want {
			t.Errorf("OutputPath = %q, want %q", got, want)
		}
	})

	t.Run("nil probe", func(t *testing.T) {
		got := OutputPath("output", "shot01", nil)
		want := filepath.Join("output", "shot01.mp4")
		if got != want {
			t.Errorf("OutputPath = %q, want %q", got, want)
		}
	})
}
