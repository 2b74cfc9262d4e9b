// Package providers 大模型实体识别后端
package providers

import (
	"context"
	"time"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// 后端名称
const (
	BackendOllama     = "ollama"
	BackendOpenAI     = "openai"
	BackendCompatible = "compatible"
)

// Config 后端公共配置
type Config struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`

	// 单次请求超时
	Timeout time.Duration `json:"timeout"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置，指向本地 Ollama
func DefaultConfig() Config {
	return Config{
		APIEndpoint: "http://127.0.0.1:11434",
		Model:       "qwen2:7b",
		Temperature: 0,
		Timeout:     60 * time.Second,
		Headers:     make(map[string]string),
	}
}

// Analyzer 让大模型找出文本中的隐私实体
//
// 返回的实体不带位置；Replacement 可以为空，由调用方按类别补齐。
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]entity.Entity, error)

	// Name 后端名称
	Name() string
}

// Error 后端错误
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// NewError 创建后端错误
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}
