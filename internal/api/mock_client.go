package api

import (
	"context"
	"sync"

	"github.com/diogo/simchat/internal/models"
)

// MockExchanger is an in-memory exchanger for tests
type MockExchanger struct {
	// Mock return values
	Reply string
	Err   error
	// Gate, when set, blocks Exchange until it is closed or ctx is done
	Gate chan struct{}

	mu       sync.Mutex
	requests []models.ChatRequest
}

// Exchange records req and returns the configured reply or error
func (m *MockExchanger) Exchange(ctx context.Context, req models.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns how many exchanges were attempted
func (m *MockExchanger) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests
func (m *MockExchanger) Requests() []models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or the zero value
func (m *MockExchanger) LastRequest() models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return models.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}
