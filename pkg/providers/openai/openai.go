package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
)

// Provider OpenAI 后端（官方SDK）
type Provider struct {
	config providers.Config
	client openai.Client
}

// 确保 Provider 实现 providers.Analyzer 接口
var _ providers.Analyzer = (*Provider)(nil)

// New 创建新的OpenAI后端
func New(config providers.Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// 失败由调用方降级处理，不在这里重试
		option.WithMaxRetries(0),
	}

	if config.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(config.APIEndpoint))
	}
	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &Provider{
		config: config,
		client: openai.NewClient(opts...),
	}
}

// Name 获取后端名称
func (p *Provider) Name() string {
	return providers.BackendOpenAI
}

// Analyze 请求模型识别实体
func (p *Provider) Analyze(ctx context.Context, text string) ([]entity.Entity, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(providers.SystemPrompt),
			openai.UserMessage(providers.BuildPrompt(text)),
		},
		Model:       openai.ChatModel(p.config.Model),
		Temperature: openai.Float(float64(p.config.Temperature)),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, providers.NewError("empty_response", "no choices returned from OpenAI")
	}

	return providers.ParseEntities(completion.Choices[0].Message.Content)
}
