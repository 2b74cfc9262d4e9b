package tagger

import (
	"errors"
	"unicode/utf8"
)

// PosUnknown 未登录字的词性
const PosUnknown = "x"

// Dictionary 正向最大匹配的词典标注器
//
// 不依赖统计模型，结果完全由词表决定；适合测试和只需识别已知名称的场景。
// 频率参数被忽略，冲突时以最长词为准。
type Dictionary struct {
	words  map[string]string
	maxLen int
}

// NewDictionary 用 词→词性 表创建标注器
func NewDictionary(words map[string]string) *Dictionary {
	d := &Dictionary{words: make(map[string]string, len(words))}
	for w, pos := range words {
		_ = d.AddWord(w, 0, pos)
	}
	return d
}

// AddWord 加入词汇
func (d *Dictionary) AddWord(word string, _ float64, pos string) error {
	if word == "" {
		return errors.New("empty word")
	}
	d.words[word] = pos
	if n := utf8.RuneCountInString(word); n > d.maxLen {
		d.maxLen = n
	}
	return nil
}

// Tag 按最长匹配切分，未登录字单字成词
func (d *Dictionary) Tag(text string) []Token {
	runes := []rune(text)
	var tokens []Token
	for i := 0; i < len(runes); {
		n := d.maxLen
		if rest := len(runes) - i; n > rest {
			n = rest
		}
		matched := false
		for ; n >= 1; n-- {
			w := string(runes[i : i+n])
			if pos, ok := d.words[w]; ok {
				tokens = append(tokens, Token{Text: w, POS: pos})
				i += n
				matched = true
				break
			}
		}
		if !matched {
			tokens = append(tokens, Token{Text: string(runes[i]), POS: PosUnknown})
			i++
		}
	}
	return tokens
}
