package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. Respond, when set, scripts the
// response per request; otherwise ResponseText is returned for every call.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailErr      error // Returned when ShouldFail is set (default: generic failure)
	ResponseText string

	// Respond overrides ResponseText when set. It receives the request so
	// tests can vary output by prompt content.
	Respond func(req *ChatRequest) (string, error)

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
	}

	if c.ShouldFail {
		err := c.FailErr
		if err == nil {
			err = fmt.Errorf("mock client configured to fail")
		}
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.Success = false
			result.ErrorType = "context_cancelled"
			result.ErrorMessage = ctx.Err().Error()
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		}
	}

	content := c.ResponseText
	if c.Respond != nil {
		var err error
		content, err = c.Respond(req)
		if err != nil {
			result.Success = false
			result.ErrorType = "mock_failure"
			result.ErrorMessage = err.Error()
			result.ExecutionTime = time.Since(start)
			return result, err
		}
	}

	result.Success = true
	result.Content = content
	result.ExecutionTime = time.Since(start)

	// Simulate token counting
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Reset resets the request counter.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
