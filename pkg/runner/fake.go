package runner

import (
	"context"
	"fmt"
	"sync"
)

// Call records a single invocation made through a FakeRunner
type Call struct {
	Dir  string
	Name string
	Args []string
}

// FakeRunner is a Runner for tests. It records every call and answers with
// RunFunc when set, otherwise with a successful empty Result.
type FakeRunner struct {
	RunFunc func(dir string, name string, args ...string) (*Result, error)

	mu    sync.Mutex
	calls []Call
}

// Run implements the Runner interface
func (f *FakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Dir: dir, Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.RunFunc != nil {
		return f.RunFunc(dir, name, args...)
	}
	return &Result{}, nil
}

// Calls returns the recorded invocations in order
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of the named executable
func (f *FakeRunner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Output builds a Result whose stdout and combined output are s
func Output(s string) *Result {
	return &Result{Stdout: []byte(s), Combined: []byte(s)}
}

// Exit builds a Result with the given exit code and stderr message
func Exit(code int, stderr string) *Result {
	return &Result{Stderr: []byte(stderr), Combined: []byte(stderr), ExitCode: code}
}

// String implements fmt.Stringer for nicer test failure messages
func (c Call) String() string {
	return fmt.Sprintf("[%s] %s", c.Dir, CommandLine(c.Name, c.Args...))
}
