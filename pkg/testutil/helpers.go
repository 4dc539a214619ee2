// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/iwvelando/smart-calc-suite/internal/insight"
)

// StubCollaborator is an insight.Collaborator that answers with Text or Err.
// When Gate is set, every call blocks until a value is received from it or
// the context ends; Started receives each request as the call begins.
type StubCollaborator struct {
	Text    string
	Err     error
	Gate    chan struct{}
	Started chan insight.Request

	mu       sync.Mutex
	requests []insight.Request
}

var _ insight.Collaborator = (*StubCollaborator)(nil)

// Insight implements insight.Collaborator.
func (s *StubCollaborator) Insight(ctx context.Context, req insight.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Started != nil {
		s.Started <- req
	}
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.Text, s.Err
}

// Calls returns how many times Insight was invoked.
func (s *StubCollaborator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of every request received so far.
func (s *StubCollaborator) Requests() []insight.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]insight.Request(nil), s.requests...)
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Eventually polls cond until it holds or timeout elapses and reports
// whether it held.
func Eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}
