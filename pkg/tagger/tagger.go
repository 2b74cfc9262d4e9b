// Package tagger 定义分词与词性标注能力
//
// 标注器只产出 (词, 词性) 序列，不带任何位置信息。
package tagger

// 词性标签（与 jieba/ICTCLAS 标注集一致）
const (
	PosPerson       = "nr"
	PosPlace        = "ns"
	PosOrganization = "nt"
	PosNoun         = "n"
)

// Token 一个分词结果
type Token struct {
	Text string
	POS  string
}

// Tagger 分词与词性标注
type Tagger interface {
	Tag(text string) []Token
}

// WordAdder 支持注入自定义词汇的标注器
type WordAdder interface {
	AddWord(word string, freq float64, pos string) error
}
