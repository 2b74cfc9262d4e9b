// Package extract 提供可插拔的隐私实体抽取器
//
// 规则抽取、词性抽取与大模型增强各自独立，Composite 按固定顺序组合并去重。
package extract

import (
	"context"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// Extractor 从文本中抽取实体；相同输入必须得到相同且同序的结果
type Extractor interface {
	Extract(ctx context.Context, text string) ([]entity.Entity, error)
}

// Func 把普通函数适配为 Extractor
type Func func(ctx context.Context, text string) ([]entity.Entity, error)

// Extract 调用 f
func (f Func) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	return f(ctx, text)
}

// Dedup 按生产顺序保留每段字面文本第一次出现的实体
//
// 同一文本的不同出现位置只报告一次；替换阶段仍会作用于全部出现位置。
func Dedup(entities []entity.Entity) []entity.Entity {
	if len(entities) == 0 {
		return entities
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.Original]; ok {
			continue
		}
		seen[e.Original] = struct{}{}
		out = append(out, e)
	}
	return out
}
