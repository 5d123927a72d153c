package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

const (
	// thinking tokens of 2.5 models count against the output budget, so
	// thinking is off and the budget is wider than Claude's
	defaultGeminiMaxTokens      = 1024
	defaultGeminiThinkingBudget = 0
	defaultGeminiTimeout        = 30 * time.Second
)

// Gemini calls Gemini on Vertex AI
type Gemini struct {
	client          *genai.Client
	generativeModel string
	maxTokens       int32
	thinkingBudget  int32
	timeout         time.Duration
}

var _ LLM = (*Gemini)(nil)

type GeminiOption func(*Gemini)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *Gemini) {
		g.generativeModel = model
	}
}

func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(g *Gemini) {
		g.timeout = d
	}
}

func WithGeminiMaxTokens(n int32) GeminiOption {
	return func(g *Gemini) {
		g.maxTokens = n
	}
}

func newGemini(opts ...GeminiOption) *Gemini {
	g := &Gemini{
		generativeModel: DefaultGeminiModel,
		maxTokens:       defaultGeminiMaxTokens,
		thinkingBudget:  defaultGeminiThinkingBudget,
		timeout:         defaultGeminiTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*Gemini, error) {
	if projectID == "" {
		return nil, goerr.New("gemini project is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := newGemini(opts...)
	g.client = client
	return g, nil
}

func (g *Gemini) Chat(ctx context.Context, input ChatInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	history := trimLeadingAssistant(input.History)
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(input.Message, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, g.generateConfig(input.System))
	if err != nil {
		gwErr := &GatewayError{Provider: "gemini", Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			gwErr.Status = apiErr.Code
		}
		return "", gwErr
	}

	text := resp.Text()
	if text == "" {
		return "", &GatewayError{Provider: "gemini", Err: goerr.New("empty response")}
	}
	return text, nil
}

func (g *Gemini) generateConfig(system string) *genai.GenerateContentConfig {
	thinkingBudget := g.thinkingBudget
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, "")
	}
	return config
}
