package runner

import (
	"context"
	"sync"
	"time"
)

type MockRunner struct {
	mu           sync.Mutex
	Commands     []MockCommand
	Responses    map[string]MockResponse
	Sequences    map[string][]MockResponse
	ResponseFunc func(name string, args ...string) ([]byte, error)
}

type MockCommand struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

type MockResponse struct {
	Output []byte
	Error  error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{
		Commands:  []MockCommand{},
		Responses: make(map[string]MockResponse),
		Sequences: make(map[string][]MockResponse),
	}
}

// Run resolves a response in order: queued sequence entries, fixed
// responses, ResponseFunc, then empty output.
func (m *MockRunner) Run(
	_ context.Context,
	timeout time.Duration,
	name string,
	args ...string,
) ([]byte, error) {
	m.mu.Lock()
	m.Commands = append(m.Commands, MockCommand{
		Name:    name,
		Args:    args,
		Timeout: timeout,
	})

	key := cmdKey(name, args...)
	if seq := m.Sequences[key]; len(seq) > 0 {
		m.Sequences[key] = seq[1:]
		m.mu.Unlock()
		return seq[0].Output, seq[0].Error
	}
	resp, ok := m.Responses[key]
	fn := m.ResponseFunc
	m.mu.Unlock()

	if ok {
		return resp.Output, resp.Error
	}
	if fn != nil {
		return fn(name, args...)
	}
	return []byte{}, nil
}

func (m *MockRunner) AddResponse(key string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[key] = MockResponse{
		Output: output,
		Error:  err,
	}
}

// QueueResponse appends a one-shot response for key, consumed before any
// fixed response registered with AddResponse.
func (m *MockRunner) QueueResponse(key string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sequences[key] = append(m.Sequences[key], MockResponse{
		Output: output,
		Error:  err,
	})
}

func cmdKey(name string, args ...string) string {
	key := name
	for _, arg := range args {
		key += "|" + arg
	}
	return key
}

func (m *MockRunner) VerifyCommand(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cmd := range m.Commands {
		if cmd.Name == name && argsEqual(cmd.Args, args) {
			return true
		}
	}
	return false
}

func (m *MockRunner) VerifyRunCount(name string, count int) bool {
	return m.RunCount(name) == count
}

func (m *MockRunner) RunCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	runCount := 0
	for _, cmd := range m.Commands {
		if cmd.Name == name {
			runCount++
		}
	}
	return runCount
}

func argsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func borgInfoKey(repo string) string {
	return cmdKey("borg", "info", "--json", repo)
}

// MockBorgInfo registers a successful `borg info --json repo` payload.
func (m *MockRunner) MockBorgInfo(repo string, payload []byte) {
	m.AddResponse(borgInfoKey(repo), payload, nil)
}

// MockBorgFailure registers a failing `borg info --json repo` invocation.
func (m *MockRunner) MockBorgFailure(repo string, code int, stderr string) {
	m.AddResponse(borgInfoKey(repo), nil, &ExitError{Code: code, Stderr: []byte(stderr)})
}

// MockBorgLocked queues times lock-conflict failures for repo, served
// before any response registered with MockBorgInfo.
func (m *MockRunner) MockBorgLocked(repo string, times int) {
	for i := 0; i < times; i++ {
		m.QueueResponse(borgInfoKey(repo), nil, &ExitError{
			Code:   2,
			Stderr: []byte("Failed to create/acquire the lock " + repo + "/lock.exclusive (timeout)."),
		})
	}
}
