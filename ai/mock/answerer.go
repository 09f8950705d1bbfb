package mock

import (
	"context"
	"fmt"
)

// MockAnswerer is a test double for ai.Answerer.
// It allows custom behavior injection via function fields.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, uses default deterministic behavior.
	AnswerFunc func(ctx context.Context, question string, contexts []string) (string, error)

	callCount int
}

// NewMockAnswerer creates a mock answerer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnswerer().
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// Answer returns a deterministic answer describing the inputs.
// Default behavior: echoes the question and the number of context passages.
func (m *MockAnswerer) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	m.callCount++

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, contexts)
	}

	return fmt.Sprintf("mock answer to %q using %d passages", question, len(contexts)), nil
}

// CallCount returns the number of times Answer was called.
func (m *MockAnswerer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnswerer) Reset() {
	m.callCount = 0
	m.AnswerFunc = nil
}
