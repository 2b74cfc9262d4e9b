package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// Stage 组合抽取器中的一个阶段
//
// Optional 阶段出错只记日志，按空结果处理。
type Stage struct {
	Name      string
	Extractor Extractor
	Optional  bool
}

// Composite 按固定顺序串联多个抽取器并去重
type Composite struct {
	stages []Stage
	logger *zap.Logger
}

// NewComposite 创建组合抽取器
func NewComposite(logger *zap.Logger, stages ...Stage) *Composite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composite{stages: stages, logger: logger}
}

// Stages 返回阶段名称
func (c *Composite) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

// Extract 依次运行每个阶段，合并后按原文去重
func (c *Composite) Extract(ctx context.Context, text string) ([]entity.Entity, error) {
	var all []entity.Entity
	for _, stage := range c.stages {
		found, err := stage.Extractor.Extract(ctx, text)
		if err != nil {
			if stage.Optional {
				c.logger.Warn("optional extraction stage failed",
					zap.String("stage", stage.Name),
					zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("%s stage: %w", stage.Name, err)
		}

		c.logger.Debug("extraction stage finished",
			zap.String("stage", stage.Name),
			zap.Int("entities", len(found)))
		all = append(all, found...)
	}

	return Dedup(all), nil
}
