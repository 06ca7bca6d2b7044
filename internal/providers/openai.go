package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = openai.ChatModelGPT4oMini
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string // Optional (tests, proxies)
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // Per-call deadline
	RateLimit   int           // Requests per minute
	HTTPClient  *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
type OpenAIClient struct {
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	limiter     *RateLimiter
	client      openai.Client
}

// NewOpenAIClient creates a new OpenAI chat-completion client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 150
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// Retries are the caller's concern; the SDK default of 2 would mask
	// the per-stage failure policy.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		limiter:     NewRateLimiter(cfg.RateLimit),
		client:      openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		result.Success = false
		result.ErrorType = "rate_limit_wait"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		classified := classifyError(err)
		result.Success = false
		result.ErrorType = "api_error"
		result.ErrorMessage = classified.Error()
		result.ExecutionTime = time.Since(start)
		return result, classified
	}

	if len(resp.Choices) == 0 {
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no choices in response"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("%w: no choices in response", ErrUnavailable)
	}

	result.Success = true
	result.Content = resp.Choices[0].Message.Content
	result.ModelUsed = resp.Model
	result.PromptTokens = int(resp.Usage.PromptTokens)
	result.CompletionTokens = int(resp.Usage.CompletionTokens)
	result.TotalTokens = int(resp.Usage.TotalTokens)
	result.ExecutionTime = time.Since(start)

	return result, nil
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
