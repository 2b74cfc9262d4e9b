package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/lang"
)

// Pattern 按有序目录抽取结构化实体
type Pattern struct {
	catalog      Catalog
	placeholders entity.Placeholders
	logger       *zap.Logger
}

// PatternOption 配置 Pattern
type PatternOption func(*Pattern)

// WithPatternPlaceholders 覆盖占位符表
func WithPatternPlaceholders(p entity.Placeholders) PatternOption {
	return func(x *Pattern) { x.placeholders = p }
}

// WithPatternLogger 设置日志
func WithPatternLogger(l *zap.Logger) PatternOption {
	return func(x *Pattern) { x.logger = l }
}

// NewPattern 创建规则抽取器
func NewPattern(catalog Catalog, opts ...PatternOption) *Pattern {
	p := &Pattern{
		catalog:      catalog,
		placeholders: entity.DefaultPlaceholders(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog 返回抽取器使用的目录
func (p *Pattern) Catalog() Catalog {
	return p.catalog
}

// Extract 依目录顺序逐条规则、每条规则内自左向右抽取
//
// 有捕获组时取第一个非空组；起止位置通过从匹配起点向后重新查找该子串得到，
// 而不是使用正则引擎给出的组偏移。
func (p *Pattern) Extract(_ context.Context, text string) ([]entity.Entity, error) {
	if text == "" {
		return nil, nil
	}

	idx := newRuneIndex(text)
	chinese := -1
	var entities []entity.Entity

	for _, rule := range p.catalog {
		if rule.ChineseOnly {
			if chinese < 0 {
				chinese = 0
				if lang.IsChinese(text) {
					chinese = 1
				}
			}
			if chinese == 0 {
				continue
			}
		}

		replacement := p.placeholders.For(rule.Kind)
		m, err := rule.Pattern.FindStringMatch(text)
		for ; m != nil && err == nil; m, err = rule.Pattern.FindNextMatch(m) {
			from := idx.byteOffset(m.Index)
			groups := m.Groups()

			if len(groups) <= 1 {
				if m.Length == 0 {
					continue
				}
				matched := m.String()
				if text[from:idx.byteOffset(m.Index+m.Length)] != matched {
					// 匹配覆盖了非法 UTF-8 字节
					continue
				}
				entities = append(entities, entity.At(rule.Kind, matched, replacement, from))
				continue
			}

			for _, g := range groups[1:] {
				captured := g.String()
				if captured == "" {
					continue
				}
				pos := strings.Index(text[from:], captured)
				if pos < 0 {
					break
				}
				entities = append(entities, entity.At(rule.Kind, captured, replacement, from+pos))
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Kind, err)
		}
	}

	p.logger.Debug("pattern extraction finished",
		zap.Int("rules", len(p.catalog)),
		zap.Int("entities", len(entities)))

	return entities, nil
}

// runeIndex 把 regexp2 的字符下标换算成字节偏移
type runeIndex []int

func newRuneIndex(text string) runeIndex {
	idx := make(runeIndex, 0, len(text)+1)
	for i := range text {
		idx = append(idx, i)
	}
	return append(idx, len(text))
}

func (r runeIndex) byteOffset(runePos int) int {
	if runePos >= len(r) {
		return r[len(r)-1]
	}
	return r[runePos]
}
