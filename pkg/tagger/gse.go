package tagger

import (
	"fmt"

	"github.com/go-ego/gse"
)

// Gse 基于 gse 的标注器
//
// 每个实例持有独立的 gse.Segmenter，AddWord 只影响本实例，
// 不会像全局词典那样泄漏到其他抽取器。
type Gse struct {
	seg gse.Segmenter
}

// NewGse 加载内置中文词典并创建标注器
func NewGse() (*Gse, error) {
	g := &Gse{}
	if err := g.seg.LoadDictEmbed(); err != nil {
		return nil, fmt.Errorf("failed to load gse dictionary: %w", err)
	}
	return g, nil
}

// Tag 分词并标注词性
func (g *Gse) Tag(text string) []Token {
	if text == "" {
		return nil
	}
	segs := g.seg.Pos(text, false)
	tokens := make([]Token, 0, len(segs))
	for _, s := range segs {
		tokens = append(tokens, Token{Text: s.Text, POS: s.Pos})
	}
	return tokens
}

// AddWord 向本实例的词典加入词汇
func (g *Gse) AddWord(word string, freq float64, pos string) error {
	return g.seg.AddToken(word, freq, pos)
}
