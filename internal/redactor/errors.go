package redactor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	// ErrUnknownStrategy 策略标识未注册
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrUnsupportedFileType 文件扩展名没有对应的处理器
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrOutputMissing 处理完成后输出文件不存在
	ErrOutputMissing = errors.New("output file missing")
)

// maxSuggestDistance 超过该编辑距离不再给出建议
const maxSuggestDistance = 3

// ConfigError 配置错误，包装上面的哨兵错误
type ConfigError struct {
	Field      string
	Value      string
	Suggestion string
	Err        error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func unknownStrategy(id string, known []string) *ConfigError {
	return &ConfigError{
		Field:      "strategy",
		Value:      id,
		Suggestion: suggest(id, known),
		Err:        ErrUnknownStrategy,
	}
}

func unsupportedFileType(path string, known []string) *ConfigError {
	return &ConfigError{
		Field: "file",
		Value: path,
		Err:   fmt.Errorf("%w (supported: %v)", ErrUnsupportedFileType, known),
	}
}

// suggest 先找包含输入字符序列的候选，再退回编辑距离
func suggest(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindNormalizedFold(input, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(input, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
