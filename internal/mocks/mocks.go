// Package mocks provides mock implementations for testing.
package mocks

import (
	"sync"

	"xbrupscaler/internal/command"
)

// MockCommandExecutor provides a scriptable command executor for testing.
// Responses and Errors are keyed by the full command line (see command.Line).
// OnExecute, when set, runs before the response lookup so tests can simulate
// the side effects of external tools (writing frame files, cancelling a
// context mid-run, and so on).
// The mock is safe for concurrent use; the upscale dispatcher runs it from
// many worker goroutines at once.
type MockCommandExecutor struct {
	mu                sync.Mutex
	Responses         map[string][]byte
	Errors            map[string]error
	AvailableCommands map[string]bool
	Calls             [][]string
	OnExecute         func(name string, args []string) error
}

// NewMockCommandExecutor creates a ready-to-use mock executor.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:         make(map[string][]byte),
		Errors:            make(map[string]error),
		AvailableCommands: make(map[string]bool),
	}
}

func (m *MockCommandExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string{name}, args...))
	m.mu.Unlock()

	key := command.Line(name, args)
	if m.OnExecute != nil {
		// Output is still returned on failure, as the real executor does.
		if err := m.OnExecute(name, args); err != nil {
			return m.Responses[key], err
		}
	}
	if err, exists := m.Errors[key]; exists {
		return m.Responses[key], err
	}
	return m.Responses[key], nil
}

func (m *MockCommandExecutor) IsAvailable(name string) bool {
	return m.AvailableCommands[name]
}

// CallsFor returns the recorded invocations of the named command.
func (m *MockCommandExecutor) CallsFor(name string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calls [][]string
	for _, call := range m.Calls {
		if call[0] == name {
			calls = append(calls, call)
		}
	}
	return calls
}
