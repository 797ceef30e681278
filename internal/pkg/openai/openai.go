package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

const (
	defaultModel     = shared.ResponsesModel("gpt-5.1")
	DefaultTimeout   = 60 * time.Second
	previewByteLimit = 32 * 1024 // cap what we send to the model
)

var (
	// ErrMissingAPIKey is returned when OPENAI_API_KEY was not configured.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrNoJSON        = errors.New("model response contains no JSON")
)

// Completer is the one call the rest of the module needs from a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Client is a thin wrapper around the OpenAI responses API.
type Client struct {
	client  *openai.Client
	model   shared.ResponsesModel
	timeout time.Duration
}

// NewFromEnv builds a Client using the OPENAI_API_KEY env var.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return New(apiKey), nil
}

func New(apiKey string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &Client{client: &client, model: defaultModel, timeout: DefaultTimeout}
}

// WithModel switches the model; an empty name keeps the default.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = shared.ResponsesModel(model)
	}
	return c
}

// Complete sends prompt with the JSON-only system instructions and returns
// the raw output text.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("openai client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(truncate(prompt), responses.EasyInputMessageRoleUser),
			},
		},
	}
	if maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("call OpenAI: %w", err)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}

// DecodeJSON unmarshals the first JSON object or array in a model answer,
// tolerating code fences and chatter around it.
func DecodeJSON(text string, v any) error {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ErrNoJSON
	}

	closing := "}"
	if text[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(text, closing)
	if end < start {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return nil
}

// truncate cuts s to previewByteLimit bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= previewByteLimit {
		return s
	}
	cut := previewByteLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n\n[...truncated for brevity...]"
}
