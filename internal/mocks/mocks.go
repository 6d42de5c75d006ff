// Package mocks provides mock implementations for testing
package mocks

import (
	"fmt"
	"strings"
)

// Call records one executed command.
type Call struct {
	Name string
	Args []string
}

// MockExecutor is a scripted process launcher. Results are consumed in
// order; once the script is exhausted every call succeeds with empty
// output.
type MockExecutor struct {
	Calls   []Call
	Results []MockResult
}

// MockResult scripts the outcome of one invocation.
type MockResult struct {
	Output string
	Err    error
}

// NewMockExecutor creates an executor with no scripted results.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Fail returns a MockResult carrying a nonzero-exit style error.
func Fail(output string) MockResult {
	return MockResult{Output: output, Err: fmt.Errorf("exit status 1")}
}

// Succeed returns a successful MockResult.
func Succeed(output string) MockResult {
	return MockResult{Output: output}
}

func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, Call{Name: name, Args: append([]string(nil), args...)})

	if len(m.Results) == 0 {
		return nil, nil
	}
	r := m.Results[0]
	m.Results = m.Results[1:]
	return []byte(r.Output), r.Err
}

// CommandLines renders recorded calls for assertion messages.
func (m *MockExecutor) CommandLines() []string {
	lines := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		lines[i] = c.Name + " " + strings.Join(c.Args, " ")
	}
	return lines
}
