package finsight_test

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/finsight"
)

// mockLLMClient replays canned responses in order and records the prompts
// it was given.
type mockLLMClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

var _ finsight.LLMClient = &mockLLMClient{}

func (m *mockLLMClient) GenerateText(ctx context.Context, prompt string, options ...finsight.GenerateOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	idx := m.calls
	m.calls++

	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return "", errors.New("mock has no more responses")
}

// stubCapability is a canned data source for router and controller tests.
type stubCapability struct {
	name    string
	payload any
	err     error
	calls   int
}

var _ finsight.Capability = &stubCapability{}

func (s *stubCapability) Name() string {
	return s.name
}

func (s *stubCapability) Fetch(ctx context.Context, ticker string) (any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

// recordingObserver captures emitted events in order.
type recordingObserver struct {
	mu     sync.Mutex
	events []finsight.EventType
}

func (o *recordingObserver) Log(ctx context.Context, event finsight.EventType, payload map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) seen(event finsight.EventType) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.events {
		if e == event {
			return true
		}
	}
	return false
}

// panicObserver fails on every event, for isolation tests.
type panicObserver struct{}

func (panicObserver) Log(ctx context.Context, event finsight.EventType, payload map[string]any) {
	panic("observer exploded")
}
