// internal/agent/mocks_test.go
package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/gyuri2020/AIOpsLab-fork/internal/conversation"
)

// scriptedModel replays a fixed sequence of responses and records every
// rendered conversation it was called with. After the script runs out it
// keeps returning the last entry.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]conversation.Message
}

func (m *scriptedModel) Run(_ context.Context, messages []conversation.Message) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("scripted model: no responses left")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return []string{resp}, nil
}

func (m *scriptedModel) invocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// fakeExecutor maps commands to canned observations; unknown commands get a
// generic observation. A non-nil infraErr simulates a sandbox-level fault.
type fakeExecutor struct {
	mu           sync.Mutex
	observations map[string]string
	infraErr     error
	executed     []string
}

func (e *fakeExecutor) Execute(_ context.Context, command string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, command)
	if e.infraErr != nil {
		return "", e.infraErr
	}
	if obs, ok := e.observations[command]; ok {
		return obs, nil
	}
	return "ok", nil
}
