package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/tagger"
)

// vocabularyFreq 领域词汇注入时使用的词频，高于常见人名片段
const vocabularyFreq = 1000

// minNameLen 人名至少两个字
const minNameLen = 2

// MedicalTerms 默认注入标注器的临床术语，避免被切成类似人名的碎片
var MedicalTerms = []string{
	"高血压", "糖尿病", "冠心病", "肺炎", "肝炎", "胃炎", "贫血", "心肌梗死",
	"脑梗塞", "心功能不全", "肝功能不全", "肾功能不全", "慢性阻塞性肺疾病",
	"哮喘", "肺结核", "甲状腺功能亢进", "甲状腺功能减退", "类风湿性关节炎",
	"骨质疏松", "癫痫", "帕金森", "阿尔茨海默", "精神分裂", "抑郁症", "焦虑症",
	"白细胞", "红细胞", "血小板", "中性粒细胞", "淋巴细胞", "单核细胞",
	"血红蛋白", "肌酐", "尿素氮", "谷丙转氨酶", "谷草转氨酶", "总胆红素",
	"直接胆红素", "白蛋白", "球蛋白", "甘油三酯", "总胆固醇", "低密度脂蛋白",
	"高密度脂蛋白", "空腹血糖", "糖化血红蛋白", "凝血酶原时间", "活化部分凝血活酶时间",
}

// posKinds 只有这三种词性会产生实体
var posKinds = map[string]entity.Kind{
	tagger.PosPerson:       entity.KindName,
	tagger.PosPlace:        entity.KindPlace,
	tagger.PosOrganization: entity.KindOrganization,
}

// Lexical 基于词性的实体抽取器
type Lexical struct {
	tagger       tagger.Tagger
	placeholders entity.Placeholders
	logger       *zap.Logger
}

// LexicalOption 配置 Lexical
type LexicalOption func(*Lexical)

// WithLexicalPlaceholders 覆盖占位符表
func WithLexicalPlaceholders(p entity.Placeholders) LexicalOption {
	return func(x *Lexical) { x.placeholders = p }
}

// WithLexicalLogger 设置日志
func WithLexicalLogger(l *zap.Logger) LexicalOption {
	return func(x *Lexical) { x.logger = l }
}

// NewLexical 创建词性抽取器，并把 vocabulary 注入标注器
//
// 标注器不支持注入时词汇被忽略；标注器若是进程共享的，注入对所有使用者可见。
func NewLexical(t tagger.Tagger, vocabulary []string, opts ...LexicalOption) (*Lexical, error) {
	if t == nil {
		return nil, fmt.Errorf("lexical extractor requires a tagger")
	}

	l := &Lexical{
		tagger:       t,
		placeholders: entity.DefaultPlaceholders(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	adder, ok := t.(tagger.WordAdder)
	if !ok {
		if len(vocabulary) > 0 {
			l.logger.Debug("tagger does not accept vocabulary, overlay skipped",
				zap.Int("terms", len(vocabulary)))
		}
		return l, nil
	}
	for _, term := range vocabulary {
		if err := adder.AddWord(term, vocabularyFreq, tagger.PosNoun); err != nil {
			return nil, fmt.Errorf("failed to add vocabulary term %q: %w", term, err)
		}
	}
	return l, nil
}

// Extract 对人名、地名、机构名，逐个词元在原文中查找全部出现位置
//
// 查找是字面的：短词若恰是其他词的一部分，也会被命中。
func (l *Lexical) Extract(_ context.Context, text string) ([]entity.Entity, error) {
	if text == "" {
		return nil, nil
	}

	var entities []entity.Entity
	for _, tok := range l.tagger.Tag(text) {
		kind, ok := posKinds[tok.POS]
		if !ok || tok.Text == "" {
			continue
		}
		if kind == entity.KindName && utf8.RuneCountInString(tok.Text) < minNameLen {
			continue
		}

		replacement := l.placeholders.For(kind)
		for from := 0; ; {
			i := strings.Index(text[from:], tok.Text)
			if i < 0 {
				break
			}
			start := from + i
			entities = append(entities, entity.At(kind, tok.Text, replacement, start))
			from = start + len(tok.Text)
		}
	}

	l.logger.Debug("lexical extraction finished", zap.Int("entities", len(entities)))
	return entities, nil
}
