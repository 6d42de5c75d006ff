// internal/runner/runner.go

// Package runner executes planned encoder invocations as child
// processes. One job runs at a time and the caller blocks until the
// encoder exits; the only retry policy is the single software fallback
// carried by the job itself.
package runner

import (
	"fmt"
	"os/exec"
	"strings"

	"frogmpeg/internal/command"
)

// Executor abstracts child-process execution so the fallback policy is
// testable with a fake launcher.
type Executor interface {
	// Execute runs name with args and returns the combined output.
	Execute(name string, args ...string) ([]byte, error)
}

// Attempt records one encoder invocation and its outcome.
type Attempt struct {
	Label  string
	Output string
	Err    error
}

// Result reports what happened to a job. Every invocation yields an
// explicit attempt; no job is silently dropped.
type Result struct {
	Attempts []Attempt
}

// FellBack reports whether the job succeeded only after the software
// fallback.
func (r Result) FellBack() bool {
	return len(r.Attempts) > 1 && r.Attempts[len(r.Attempts)-1].Err == nil
}

// JobError indicates that every invocation of a job failed, fallback
// included. It carries the captured output of each attempt for
// diagnostics.
type JobError struct {
	Attempts []Attempt
}

func (e *JobError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "conversion failed after %d attempt(s)", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Label, a.Err)
		if out := strings.TrimSpace(a.Output); out != "" {
			fmt.Fprintf(&b, "\n    %s", strings.ReplaceAll(out, "\n", "\n    "))
		}
	}
	return b.String()
}

// Runner launches encoder invocations through an Executor.
type Runner struct {
	FFmpegPath string
	Executor   Executor
}

// New returns a Runner using the real process launcher.
func New(ffmpegPath string) *Runner {
	return &Runner{FFmpegPath: ffmpegPath, Executor: ExecExecutor{}}
}

// Run executes the job's invocations in order: the primary first, then
// the fallback if the primary exits nonzero. A successful invocation
// ends the job; when every invocation fails the returned error is a
// *JobError carrying all captured output.
func (r *Runner) Run(job command.Job) (Result, error) {
	var result Result
	for _, inv := range job.Invocations {
		out, err := r.Executor.Execute(r.FFmpegPath, inv.Args...)
		result.Attempts = append(result.Attempts, Attempt{
			Label:  inv.Label,
			Output: string(out),
			Err:    err,
		})
		if err == nil {
			return result, nil
		}
	}
	return result, &JobError{Attempts: result.Attempts}
}

// ExecExecutor runs commands with os/exec and captures combined
// output.
type ExecExecutor struct{}

func (ExecExecutor) Execute(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %v", name, err)
	}
	return out, nil
}
