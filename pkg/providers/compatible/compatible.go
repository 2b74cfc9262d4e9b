// Package compatible 通过 OpenAI 兼容接口（vLLM、LocalAI、Ollama /v1 等）调用模型
package compatible

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
)

// Provider OpenAI 兼容后端
type Provider struct {
	config providers.Config
	client *openai.Client
}

var _ providers.Analyzer = (*Provider)(nil)

// headerTransport 给每个请求附加自定义头部
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// New 创建兼容后端
func New(config providers.Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIEndpoint != "" {
		// go-openai 的路径以斜杠开头
		clientConfig.BaseURL = strings.TrimSuffix(config.APIEndpoint, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   config.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: config.Headers},
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name 获取后端名称
func (p *Provider) Name() string {
	return providers.BackendCompatible
}

// Analyze 请求模型识别实体
func (p *Provider) Analyze(ctx context.Context, text string) ([]entity.Entity, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: providers.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: providers.BuildPrompt(text)},
		},
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, providers.NewError("empty_response", "no choices returned")
	}

	return providers.ParseEntities(resp.Choices[0].Message.Content)
}
