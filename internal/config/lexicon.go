package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// Lexicon 词表文件
//
//	vocabulary = ["林可霉素", "PICC"]
//
//	[placeholders]
//	NAME = "某某"
//	PHONE = "[电话]"
type Lexicon struct {
	Vocabulary   []string          `toml:"vocabulary"`
	Placeholders map[string]string `toml:"placeholders"`
}

// LoadLexicon 读取并校验 TOML 词表，不认识的类别或多余的键视为错误
func LoadLexicon(path string) (*Lexicon, error) {
	var lex Lexicon
	meta, err := toml.DecodeFile(path, &lex)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("lexicon %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return &lex, nil
}

// Validate 检查类别与词汇
func (l *Lexicon) Validate() error {
	var unknown []string
	for k, v := range l.Placeholders {
		if !entity.Kind(k).Known() {
			unknown = append(unknown, k)
		}
		if v == "" {
			return fmt.Errorf("placeholder for %s is empty", k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown entity kinds: %s", strings.Join(unknown, ", "))
	}

	for i, w := range l.Vocabulary {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("vocabulary entry %d is empty", i)
		}
	}
	return nil
}

// KindPlaceholders 占位符覆盖表
func (l *Lexicon) KindPlaceholders() entity.Placeholders {
	if len(l.Placeholders) == 0 {
		return nil
	}
	out := make(entity.Placeholders, len(l.Placeholders))
	for k, v := range l.Placeholders {
		out[entity.Kind(k)] = v
	}
	return out
}
