package runner

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Call is one command recorded by a Fake.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// String renders the call as a shell-like command line.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Handler decides the outcome of a faked command.
type Handler func(c Call) Result

// Fake is a Runner for tests. It records every call and answers through the
// handler registered for the command name; unregistered commands succeed.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// Handle registers a handler for the given command name.
func (f *Fake) Handle(name string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) Run(_ context.Context, name string, args ...string) Result {
	return f.dispatch(Call{Name: name, Args: args})
}

func (f *Fake) RunInteractive(_ context.Context, name string, args ...string) Result {
	return f.dispatch(Call{Name: name, Args: args, Interactive: true})
}

func (f *Fake) dispatch(c Call) Result {
	f.mu.Lock()
	c.Args = append([]string(nil), c.Args...)
	f.calls = append(f.calls, c)
	h := f.handlers[c.Name]
	f.mu.Unlock()

	if h == nil {
		return Result{}
	}
	return h(c)
}

// Exit returns a Handler that always exits with code.
func Exit(code int) Handler {
	return func(Call) Result {
		if code == 0 {
			return Result{}
		}
		return Result{ExitCode: code, Stderr: []byte("exit status " + strconv.Itoa(code))}
	}
}

