// Package redact 把抽取到的实体替换成占位符
//
// Positional 按位置自右向左拼接，是权威模式；Substitute 按抽取顺序做全局字面替换，
// 结果依赖顺序，用于位置不可信的场合（例如文档段落）。
package redact

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

var (
	// ErrMissingSpan 位置模式收到了不带位置的实体
	ErrMissingSpan = errors.New("entity has no span")
	// ErrSpanOutOfRange 实体位置超出文本范围
	ErrSpanOutOfRange = errors.New("entity span out of range")
)

// Audit 占位符到原文的映射；多个原文共用一个占位符时保留最后替换的那个
type Audit map[string]string

// Result 脱敏结果
type Result struct {
	Text  string
	Audit Audit
}

// Positional 按 Start 从大到小拼接替换
//
// 要求每个实体都带有基于 text 的、互不重叠的位置；重叠时结果未定义。
func Positional(text string, entities []entity.Entity) (Result, error) {
	for _, e := range entities {
		if !e.HasSpan() {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingSpan, e.Kind)
		}
		if e.Span.Start < 0 || e.Span.End > len(text) || e.Span.Start > e.Span.End {
			return Result{}, fmt.Errorf("%w: %s [%d,%d) in %d bytes",
				ErrSpanOutOfRange, e.Kind, e.Span.Start, e.Span.End, len(text))
		}
	}

	ordered := byStartDesc(entities)
	audit := make(Audit, len(ordered))
	out := text
	for _, e := range ordered {
		out = out[:e.Span.Start] + e.Replacement + out[e.Span.End:]
		audit[e.Replacement] = e.Original
	}
	return Result{Text: out, Audit: audit}, nil
}

// Substitute 按给定顺序把每个 Original 的全部出现替换为 Replacement
//
// 一个实体的原文是另一个的子串，或占位符恰好包含后续原文时，结果取决于顺序。
func Substitute(text string, entities []entity.Entity) Result {
	audit := make(Audit, len(entities))
	out := text
	for _, e := range entities {
		if e.Original == "" {
			continue
		}
		out = strings.ReplaceAll(out, e.Original, e.Replacement)
		audit[e.Replacement] = e.Original
	}
	return Result{Text: out, Audit: audit}
}

// Apply 混合模式：按 Start 从大到小处理，有位置的拼接，没有位置的视为 Start 为 0 并做全局替换
//
// 拼接使用的位置不会随前面的全局替换调整，调用方需保证两类实体不会互相影响。
func Apply(text string, entities []entity.Entity) (Result, error) {
	ordered := byStartDesc(entities)
	audit := make(Audit, len(ordered))
	out := text
	for _, e := range ordered {
		if e.HasSpan() {
			if e.Span.Start < 0 || e.Span.End > len(out) || e.Span.Start > e.Span.End {
				return Result{}, fmt.Errorf("%w: %s [%d,%d) in %d bytes",
					ErrSpanOutOfRange, e.Kind, e.Span.Start, e.Span.End, len(out))
			}
			out = out[:e.Span.Start] + e.Replacement + out[e.Span.End:]
		} else if e.Original != "" {
			out = strings.ReplaceAll(out, e.Original, e.Replacement)
		}
		audit[e.Replacement] = e.Original
	}
	return Result{Text: out, Audit: audit}, nil
}

func start(e entity.Entity) int {
	if e.Span == nil {
		return 0
	}
	return e.Span.Start
}

// byStartDesc 稳定排序，同一位置保持原有顺序
func byStartDesc(entities []entity.Entity) []entity.Entity {
	ordered := make([]entity.Entity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return start(ordered[i]) > start(ordered[j])
	})
	return ordered
}
