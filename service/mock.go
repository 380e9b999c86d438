package service

import (
	"context"
	"sync"
	"time"
)

// MockService is a lightweight in-memory Service useful for tests and
// examples. Responses are canned raw strings keyed by container name (the
// empty key answers initial generation) and by round for Analyze. Errors can
// be scripted per container, either permanently or for the first n attempts.
type MockService struct {
	mu sync.Mutex

	expandResponses  map[string]string
	analyzeResponses map[int]string
	expandErrs       map[string]error
	failuresLeft     map[string]int

	delay time.Duration

	expandCalls  int
	analyzeCalls int
	inFlight     int
	maxInFlight  int
}

var _ Service = (*MockService)(nil)

// NewMockService constructs an empty MockService.
func NewMockService() *MockService {
	return &MockService{
		expandResponses:  map[string]string{},
		analyzeResponses: map[int]string{},
		expandErrs:       map[string]error{},
		failuresLeft:     map[string]int{},
	}
}

// AddExpandResponse registers a canned raw expansion response for a container
// name. Use the empty name for initial root generation.
func (m *MockService) AddExpandResponse(containerName, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expandResponses[containerName] = raw
}

// AddAnalyzeResponse registers a canned raw analyze response for a round.
func (m *MockService) AddAnalyzeResponse(round int, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzeResponses[round] = raw
}

// FailExpand scripts a permanent error for a container name.
func (m *MockService) FailExpand(containerName string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expandErrs[containerName] = err
}

// FailExpandTimes scripts an error for the first n expansion attempts of a
// container; later attempts use the canned response.
func (m *MockService) FailExpandTimes(containerName string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expandErrs[containerName] = err
	m.failuresLeft[containerName] = n
}

// SetDelay makes every call sleep, to exercise concurrency behavior.
func (m *MockService) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// ExpandCalls returns how many Expand requests were made.
func (m *MockService) ExpandCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expandCalls
}

// AnalyzeCalls returns how many Analyze requests were made.
func (m *MockService) AnalyzeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzeCalls
}

// MaxInFlight returns the highest number of concurrently executing calls
// observed, for asserting concurrency ceilings.
func (m *MockService) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *MockService) enter() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	return m.delay
}

func (m *MockService) exit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

// Expand implements Service.
func (m *MockService) Expand(ctx context.Context, req ExpandRequest) (string, error) {
	delay := m.enter()
	defer m.exit()

	m.mu.Lock()
	m.expandCalls++
	err, failing := m.expandErrs[req.ContainerName]
	if failing {
		if left, bounded := m.failuresLeft[req.ContainerName]; bounded {
			if left <= 0 {
				failing = false
			} else {
				m.failuresLeft[req.ContainerName] = left - 1
			}
		}
	}
	raw := m.expandResponses[req.ContainerName]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", NewPermanentError(OpExpand, ctx.Err())
		case <-time.After(delay):
		}
	}
	if failing {
		return "", err
	}
	if raw == "" {
		raw = `{"nodes": []}`
	}
	return raw, nil
}

// Analyze implements Service.
func (m *MockService) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	delay := m.enter()
	defer m.exit()

	m.mu.Lock()
	m.analyzeCalls++
	raw := m.analyzeResponses[req.Round]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", NewPermanentError(OpAnalyze, ctx.Err())
		case <-time.After(delay):
		}
	}
	if raw == "" {
		raw = `{"completeness_score": 100, "redundant_node_ids": [], "containers_to_expand": []}`
	}
	return raw, nil
}
