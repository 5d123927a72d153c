package adapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultClaudeModel     = "claude-haiku-4-5-20251001"
	defaultClaudeMaxTokens = 500
	defaultClaudeTimeout   = 30 * time.Second
)

// Claude calls the Anthropic Messages API
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

var _ LLM = (*Claude)(nil)

type ClaudeOption func(*Claude, *[]option.RequestOption)

func WithClaudeModel(name string) ClaudeOption {
	return func(c *Claude, _ *[]option.RequestOption) {
		c.model = name
	}
}

func WithClaudeMaxTokens(n int64) ClaudeOption {
	return func(c *Claude, _ *[]option.RequestOption) {
		c.maxTokens = n
	}
}

func WithClaudeTimeout(d time.Duration) ClaudeOption {
	return func(c *Claude, _ *[]option.RequestOption) {
		c.timeout = d
	}
}

// WithClaudeBaseURL points the client at another endpoint, e.g. a test server
func WithClaudeBaseURL(url string) ClaudeOption {
	return func(_ *Claude, opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(url), option.WithMaxRetries(0))
	}
}

// NewClaude creates a Claude gateway. apiKey is required.
func NewClaude(apiKey string, opts ...ClaudeOption) (*Claude, error) {
	if apiKey == "" {
		return nil, goerr.New("anthropic API key is required")
	}

	c := &Claude{
		model:     DefaultClaudeModel,
		maxTokens: defaultClaudeMaxTokens,
		timeout:   defaultClaudeTimeout,
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(c, &reqOpts)
	}
	c.client = anthropic.NewClient(reqOpts...)

	return c, nil
}

func (c *Claude) Chat(ctx context.Context, input ChatInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	history := trimLeadingAssistant(input.History)
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(input.Message)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if input.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: input.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		gwErr := &GatewayError{Provider: "anthropic", Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			gwErr.Status = apiErr.StatusCode
		}
		return "", gwErr
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &GatewayError{Provider: "anthropic", Err: goerr.New("empty response", goerr.V("stop_reason", resp.StopReason))}
	}

	return text.String(), nil
}
