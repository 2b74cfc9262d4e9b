package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/redact"
)

// Rewriter 逐段落抽取并替换，尽量保留片段格式
type Rewriter struct {
	extractor extract.Extractor
	logger    *zap.Logger
}

// NewRewriter 创建段落改写器
func NewRewriter(extractor extract.Extractor, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{extractor: extractor, logger: logger}
}

// Rewrite 按文档顺序处理所有段落（含表格内段落），返回各段落实体的拼接
func (r *Rewriter) Rewrite(ctx context.Context, doc *Document) ([]entity.Entity, error) {
	var all []entity.Entity
	index := 0
	err := doc.Walk(func(p *Paragraph) error {
		found, err := r.RewriteParagraph(ctx, p)
		if err != nil {
			return fmt.Errorf("paragraph %d: %w", index, err)
		}
		all = append(all, found...)
		index++
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("document rewritten",
		zap.Int("paragraphs", index),
		zap.Int("entities", len(all)))
	return all, nil
}

// RewriteParagraph 处理单个段落
//
// 空白段落和没有实体的段落保持原样；段落内位置不可信，统一使用全局字面替换。
func (r *Rewriter) RewriteParagraph(ctx context.Context, p *Paragraph) ([]entity.Entity, error) {
	text := p.Text()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	found, err := r.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}

	replaced := redact.Substitute(text, found).Text
	if replaced == text {
		return found, nil
	}

	Redistribute(p, replaced)
	return found, nil
}

// Redistribute 把新文本按各片段原有的字符数依次切分回片段
//
// 单片段段落直接整体赋值。新文本用尽后其余片段置空；新文本更长时，剩余部分追加到最后一个片段。
// 切分不对齐实体边界，长度变化后样式可能跨越实体边界。
func Redistribute(p *Paragraph, text string) {
	if len(p.Runs) == 0 {
		return
	}
	if len(p.Runs) == 1 {
		p.Runs[0].Text = text
		return
	}

	runes := []rune(text)
	offset := 0
	for _, run := range p.Runs {
		if offset >= len(runes) {
			run.Text = ""
			continue
		}

		n := len([]rune(run.Text))
		if offset+n <= len(runes) {
			run.Text = string(runes[offset : offset+n])
			offset += n
			continue
		}
		run.Text = string(runes[offset:])
		offset = len(runes)
	}

	if offset < len(runes) {
		last := p.Runs[len(p.Runs)-1]
		last.Text += string(runes[offset:])
	}
}
