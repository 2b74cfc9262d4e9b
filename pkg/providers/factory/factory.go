package factory

import (
	"fmt"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers/compatible"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers/openai"
)

// ProviderFactory 后端工厂
type ProviderFactory struct {
	registry *providers.Registry
}

// New 创建新的后端工厂，内置 ollama、openai、compatible 三种后端
func New() *ProviderFactory {
	registry := providers.NewRegistry()
	_ = registry.Register(providers.BackendOllama, func(c providers.Config) providers.Analyzer {
		return ollama.New(c)
	})
	_ = registry.Register(providers.BackendOpenAI, func(c providers.Config) providers.Analyzer {
		return openai.New(c)
	})
	_ = registry.Register(providers.BackendCompatible, func(c providers.Config) providers.Analyzer {
		return compatible.New(c)
	})

	return &ProviderFactory{registry: registry}
}

// Register 注册额外的后端
func (f *ProviderFactory) Register(name string, ctor providers.Constructor) error {
	return f.registry.Register(name, ctor)
}

// Backends 列出可用后端
func (f *ProviderFactory) Backends() []string {
	return f.registry.List()
}

// CreateAnalyzer 根据后端名称创建分析器；名称为空时使用 ollama
func (f *ProviderFactory) CreateAnalyzer(backend string, config providers.Config) (providers.Analyzer, error) {
	if backend == "" {
		backend = providers.BackendOllama
	}
	if config.Model == "" {
		return nil, fmt.Errorf("backend %s: model is required", backend)
	}

	analyzer, err := f.registry.Create(backend, config)
	if err != nil {
		return nil, fmt.Errorf("unsupported backend type: %w", err)
	}
	return analyzer, nil
}
