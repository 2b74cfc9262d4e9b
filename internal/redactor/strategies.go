package redactor

import (
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
)

func builtins() map[string]Factory {
	return map[string]Factory{
		StrategyLexical: newLexical,
		StrategyRegex: func(opts Options, deps Deps) (extract.Extractor, error) {
			return newPattern(extract.BaseCatalog(), opts, deps), nil
		},
		StrategyDomain: func(opts Options, deps Deps) (extract.Extractor, error) {
			return newPattern(extract.DomainCatalog(), opts, deps), nil
		},
		StrategyLLM: func(opts Options, deps Deps) (extract.Extractor, error) {
			return newLLM(opts, deps), nil
		},
		StrategyMedical: composite(extract.BaseCatalog),
		StrategyHybrid:  composite(extract.DomainCatalog),
	}
}

func newPattern(catalog extract.Catalog, opts Options, deps Deps) *extract.Pattern {
	return extract.NewPattern(catalog,
		extract.WithPatternPlaceholders(opts.placeholders()),
		extract.WithPatternLogger(deps.Logger.Named("regex")))
}

func newLexical(opts Options, deps Deps) (extract.Extractor, error) {
	t, err := deps.NewTagger()
	if err != nil {
		return nil, err
	}
	return extract.NewLexical(t, opts.vocabulary(),
		extract.WithLexicalPlaceholders(opts.placeholders()),
		extract.WithLexicalLogger(deps.Logger.Named("lexical")))
}

func newLLM(opts Options, deps Deps) *extract.LLM {
	return extract.NewLLM(deps.Analyzer,
		extract.WithLLMPlaceholders(opts.placeholders()),
		extract.WithLLMLogger(deps.Logger.Named("llm")))
}

// composite 模式 → 分词 → 大模型（启用时），大模型阶段失败不影响整体
func composite(catalog func() extract.Catalog) Factory {
	return func(opts Options, deps Deps) (extract.Extractor, error) {
		lexical, err := newLexical(opts, deps)
		if err != nil {
			return nil, err
		}

		stages := []extract.Stage{
			{Name: StrategyRegex, Extractor: newPattern(catalog(), opts, deps)},
			{Name: StrategyLexical, Extractor: lexical},
		}
		if opts.EnableLLM {
			stages = append(stages, extract.Stage{
				Name:      StrategyLLM,
				Extractor: newLLM(opts, deps),
				Optional:  true,
			})
		}

		deps.Logger.Debug("composite extractor built",
			zap.String("strategy", opts.Strategy),
			zap.Int("stages", len(stages)))
		return extract.NewComposite(deps.Logger, stages...), nil
	}
}
