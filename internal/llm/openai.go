package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// openaiModels lists models we route to.
var openaiModels = []string{
	"gpt-5.1",
	"gpt-4o",
	"gpt-4o-mini",
}

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider on top of the Responses API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	p := &OpenAIProvider{
		client: &client,
		model:  defaultOpenAIModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *OpenAIProvider) Name() string     { return ProviderOpenAI }
func (p *OpenAIProvider) Models() []string { return openaiModels }

// Ping verifies the API key by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	return err
}

// Chat sends the conversation through the Responses API.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	model := p.model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	input := make(responses.ResponseInputParam, 0, len(messages))
	for _, m := range messages {
		input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, roleToOpenAI(m.Role)))
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if opts != nil && opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts != nil && opts.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(opts.MaxTokens))
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, err
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Content:  output,
		Model:    model,
		Provider: ProviderOpenAI,
		Latency:  time.Since(start),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func roleToOpenAI(role Role) responses.EasyInputMessageRole {
	switch role {
	case RoleSystem:
		return responses.EasyInputMessageRoleSystem
	case RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		return responses.EasyInputMessageRoleUser
	}
}
