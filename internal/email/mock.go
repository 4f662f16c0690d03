package email

import (
	"context"
	"sync"
)

// MockService records sent reports in memory for verification in tests.
type MockService struct {
	mu   sync.Mutex
	sent []MockEmail
	// Err, when set, is returned by every send
	Err error
}

// MockEmail represents an email that was sent by the mock service.
type MockEmail struct {
	To     string
	Report Report
}

// NewMockService creates a new mock email service.
func NewMockService() *MockService {
	return &MockService{}
}

// SendOptimizationReport records the report.
func (s *MockService) SendOptimizationReport(_ context.Context, to string, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, MockEmail{To: to, Report: report})
	return nil
}

// Sent returns a copy of all reports sent.
func (s *MockService) Sent() []MockEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MockEmail, len(s.sent))
	copy(out, s.sent)
	return out
}

// Reset clears all stored emails.
func (s *MockService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
