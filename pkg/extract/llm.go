package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// Analyzer 大模型实体识别后端
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]entity.Entity, error)
}

// LLM 大模型增强抽取器
//
// 后端不可用或出错时返回空结果，不返回错误。
type LLM struct {
	analyzer     Analyzer
	placeholders entity.Placeholders
	logger       *zap.Logger
}

// LLMOption 配置 LLM
type LLMOption func(*LLM)

// WithLLMPlaceholders 覆盖占位符表
func WithLLMPlaceholders(p entity.Placeholders) LLMOption {
	return func(x *LLM) { x.placeholders = p }
}

// WithLLMLogger 设置日志
func WithLLMLogger(l *zap.Logger) LLMOption {
	return func(x *LLM) { x.logger = l }
}

// NewLLM 创建大模型抽取器；analyzer 可以为 nil
func NewLLM(analyzer Analyzer, opts ...LLMOption) *LLM {
	l := &LLM{
		analyzer:     analyzer,
		placeholders: entity.DefaultPlaceholders(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Extract 调用后端，丢弃原文中不存在的片段，并补齐占位符
func (l *LLM) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	if l.analyzer == nil || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	found, err := l.analyzer.Analyze(ctx, text)
	if err != nil {
		l.logger.Warn("llm analysis failed, contributing nothing", zap.Error(err))
		return nil, nil
	}

	entities := make([]entity.Entity, 0, len(found))
	for _, e := range found {
		if e.Original == "" || !strings.Contains(text, e.Original) {
			continue
		}
		if e.Replacement == "" {
			e.Replacement = l.placeholders.For(e.Kind)
		}
		entities = append(entities, e)
	}

	l.logger.Debug("llm extraction finished",
		zap.Int("returned", len(found)),
		zap.Int("kept", len(entities)))
	return entities, nil
}
