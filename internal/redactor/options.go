package redactor

import (
	"time"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
)

// 内置策略标识
const (
	StrategyLexical = "lexical"
	StrategyRegex   = "regex"
	StrategyLLM     = "llm"
	StrategyMedical = "medical"
	StrategyHybrid  = "hybrid"
	StrategyDomain  = "domain"

	DefaultStrategy = StrategyMedical
)

// LLMOptions 大模型增强配置
type LLMOptions struct {
	Backend string
	Model   string
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Options 构造时确定、之后不再修改的配置
type Options struct {
	Strategy  string
	EnableLLM bool
	LLM       LLMOptions

	// Vocabulary 追加到默认医学词表之后
	Vocabulary []string
	// Placeholders 覆盖默认占位符
	Placeholders entity.Placeholders
}

// DefaultOptions 返回默认配置：medical 策略，不启用大模型，后端为本地 Ollama
func DefaultOptions() Options {
	def := providers.DefaultConfig()
	return Options{
		Strategy: DefaultStrategy,
		LLM: LLMOptions{
			Backend: providers.BackendOllama,
			Model:   def.Model,
			Timeout: def.Timeout,
		},
	}
}

func (o Options) placeholders() entity.Placeholders {
	return entity.DefaultPlaceholders().With(o.Placeholders)
}

func (o Options) vocabulary() []string {
	out := make([]string, 0, len(extract.MedicalTerms)+len(o.Vocabulary))
	out = append(out, extract.MedicalTerms...)
	return append(out, o.Vocabulary...)
}

func (o Options) providerConfig() providers.Config {
	cfg := providers.DefaultConfig()
	cfg.Model = o.LLM.Model
	cfg.APIKey = o.LLM.APIKey
	switch {
	case o.LLM.URL != "":
		cfg.APIEndpoint = o.LLM.URL
	case o.LLM.Backend != "" && o.LLM.Backend != providers.BackendOllama:
		// 其他后端使用各自 SDK 的默认地址
		cfg.APIEndpoint = ""
	}
	if o.LLM.Timeout > 0 {
		cfg.Timeout = o.LLM.Timeout
	}
	return cfg
}
