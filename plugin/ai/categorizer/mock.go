package categorizer

import (
	"context"
	"sync"
)

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	mu sync.Mutex

	Result GroupID
	Err    error

	callCount int
}

// NewMockClassifier creates a MockClassifier returning the given group.
func NewMockClassifier(result GroupID) *MockClassifier {
	return &MockClassifier{Result: result}
}

// Classify returns the configured result or error.
func (m *MockClassifier) Classify(_ context.Context, _ string, _ string) (GroupID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	if m.Err != nil {
		return GroupOther, m.Err
	}
	return m.Result, nil
}

// CallCount returns how many times Classify was invoked.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Ensure MockClassifier implements Classifier
var _ Classifier = (*MockClassifier)(nil)
