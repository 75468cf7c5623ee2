package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clinichq/clinic-api/internal/config"
	"github.com/clinichq/clinic-api/pkg/circuitbreaker"
	"github.com/clinichq/clinic-api/pkg/metrics"
)

const (
	summarySystemPrompt = "You are a medical assistant that summarizes patient information."
	chatSystemPrompt    = "You are a professional medical assistant. Provide clinically helpful answers, but do NOT make a final diagnosis or prescribe medication."
)

// PatientContext is the structured clinical text sent with every request.
type PatientContext struct {
	Name        string
	Age         int
	DoctorNotes string
	Diagnosis   string
}

func (p PatientContext) prompt() string {
	return fmt.Sprintf("Patient: %s, Age: %d, Diagnosis: %s, Notes: %s",
		p.Name, p.Age, p.Diagnosis, p.DoctorNotes)
}

// ResultKind tags the decoded outcome of one completion call.
type ResultKind int

const (
	ResultOk ResultKind = iota
	ResultAPIError
	ResultEmpty
	ResultParseError
)

// Result is the tagged outcome of a completion call. Responses are decoded
// from the fixed chat-completion schema only, never by dynamic field access.
type Result struct {
	Kind    ResultKind
	Text    string
	Message string
}

// Adapter is the summarization interface the workflow engine depends on.
type Adapter interface {
	Summarize(ctx context.Context, patient PatientContext) (string, error)
	Chat(ctx context.Context, patient PatientContext, message string) (string, error)
}

// Client is a stateless adapter over the chat-completions API. Every call
// builds a fresh request with explicit credentials; nothing is shared or
// mutated between calls.
type Client struct {
	api     *openai.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewClient(cfg config.AIConfig, m *metrics.Metrics) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: model,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "ai",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		metrics: m,
	}
}

func (c *Client) Summarize(ctx context.Context, patient PatientContext) (string, error) {
	result := c.complete(ctx, "summarize", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: patient.prompt()},
	})
	return result.unwrap()
}

func (c *Client) Chat(ctx context.Context, patient PatientContext, message string) (string, error) {
	result := c.complete(ctx, "chat", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: patient.prompt()},
		{Role: openai.ChatMessageRoleUser, Content: "Doctor Question: " + message},
	})
	return result.unwrap()
}

func (c *Client) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage) Result {
	var result Result

	start := time.Now()
	err := c.breaker.Execute(func() error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			result = decodeError(err)
			return err
		}
		result = decodeResponse(resp)
		if result.Kind != ResultOk {
			return fmt.Errorf("ai returned unusable response")
		}
		return nil
	})
	if c.metrics != nil {
		c.metrics.AILatency.Observe(time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.AIRequests.WithLabelValues(operation, status).Inc()
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return Result{Kind: ResultAPIError, Message: "ai service temporarily unavailable"}
	}
	return result
}

func decodeResponse(resp openai.ChatCompletionResponse) Result {
	if len(resp.Choices) == 0 {
		return Result{Kind: ResultEmpty, Message: "ai returned no choices"}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Result{Kind: ResultEmpty, Message: "ai returned empty message"}
	}
	return Result{Kind: ResultOk, Text: text}
}

func decodeError(err error) Result {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return Result{Kind: ResultAPIError, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return Result{Kind: ResultAPIError, Message: reqErr.Error()}
	}

	return Result{Kind: ResultParseError, Message: err.Error()}
}

// unwrap flattens a Result for callers that treat anything but Ok as failure.
func (r Result) unwrap() (string, error) {
	if r.Kind == ResultOk {
		return r.Text, nil
	}
	return "", fmt.Errorf("ai request failed: %s", r.Message)
}
