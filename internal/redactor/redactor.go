// Package redactor 按策略组装抽取器，对文本和文件执行脱敏
package redactor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/document"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/lang"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers/factory"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/redact"
)

// outputSuffix 未指定输出路径时追加在文件名后
const outputSuffix = "_redacted"

// Redactor 脱敏入口
type Redactor struct {
	opts      Options
	extractor extract.Extractor
	documents *document.Registry
	logger    *zap.Logger
}

// TextResult 文本脱敏结果
type TextResult struct {
	Text     string
	Entities []entity.Entity
	Audit    redact.Audit
}

// FileResult 文件脱敏结果
type FileResult struct {
	RunID      string
	InputPath  string
	OutputPath string
	Format     document.Format
	Entities   []entity.Entity
}

// New 创建脱敏器
//
// registry 为 nil 时使用内置策略。策略不存在时返回 *ConfigError。
// 启用大模型且 deps 未提供后端时，按 opts.LLM 创建。
func New(opts Options, registry *Registry, deps Deps) (*Redactor, error) {
	if opts.Strategy == "" {
		opts.Strategy = DefaultStrategy
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	deps = deps.withDefaults()

	if _, ok := registry.Lookup(opts.Strategy); !ok {
		return nil, unknownStrategy(opts.Strategy, registry.IDs())
	}

	if deps.Analyzer == nil && (opts.EnableLLM || opts.Strategy == StrategyLLM) {
		analyzer, err := newAnalyzer(opts)
		if err != nil {
			return nil, err
		}
		deps.Analyzer = analyzer
	}

	ex, err := registry.Build(opts, deps)
	if err != nil {
		return nil, err
	}

	deps.Logger.Debug("redactor ready",
		zap.String("strategy", opts.Strategy),
		zap.Bool("llm", opts.EnableLLM))

	return &Redactor{
		opts:      opts,
		extractor: ex,
		documents: document.DefaultRegistry(),
		logger:    deps.Logger,
	}, nil
}

func newAnalyzer(opts Options) (extract.Analyzer, error) {
	analyzer, err := factory.New().CreateAnalyzer(opts.LLM.Backend, opts.providerConfig())
	if err != nil {
		return nil, &ConfigError{Field: "llm.backend", Value: opts.LLM.Backend, Err: err}
	}
	return analyzer, nil
}

// Strategy 当前策略标识
func (r *Redactor) Strategy() string {
	return r.opts.Strategy
}

// SupportedExtensions 可处理的文件扩展名
func (r *Redactor) SupportedExtensions() []string {
	return r.documents.Extensions()
}

// Entities 只抽取不替换
func (r *Redactor) Entities(ctx context.Context, text string) ([]entity.Entity, error) {
	return r.extractor.Extract(ctx, text)
}

// RedactText 抽取后按字面全局替换
func (r *Redactor) RedactText(ctx context.Context, text string) (*TextResult, error) {
	found, err := r.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	res := redact.Substitute(text, found)
	r.logger.Debug("text redacted",
		zap.String("language", lang.Detect(text)),
		zap.Bool("medical", lang.IsMedical(text)),
		zap.Any("kinds", countKinds(found)))

	return &TextResult{Text: res.Text, Entities: found, Audit: res.Audit}, nil
}

// DefaultOutputPath 返回 <name>_redacted<ext>，与输入同目录
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + outputSuffix + ext
}

// RedactFile 脱敏文件，output 为空时使用 DefaultOutputPath
//
// 扩展名在任何读写之前检查。
func (r *Redactor) RedactFile(ctx context.Context, input, output string) (*FileResult, error) {
	format, ok := r.documents.FormatForPath(input)
	if !ok {
		return nil, unsupportedFileType(input, r.documents.Extensions())
	}
	if output == "" {
		output = DefaultOutputPath(input)
	}

	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID))

	proc, err := r.documents.GetProcessor(format, logger)
	if err != nil {
		return nil, err
	}

	doc, err := r.parse(ctx, proc, input)
	if err != nil {
		return nil, err
	}
	text := doc.Text()
	logger.Info("processing file",
		zap.String("input", input),
		zap.String("format", string(format)),
		zap.String("language", lang.Detect(text)),
		zap.Bool("medical", lang.IsMedical(text)))

	found, err := document.NewRewriter(r.extractor, logger).Rewrite(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to redact %s: %w", input, err)
	}

	if err := r.render(ctx, proc, doc, output); err != nil {
		return nil, err
	}
	if _, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("%s: %w", output, ErrOutputMissing)
	}

	logger.Info("file redacted",
		zap.String("output", output),
		zap.Int("entities", len(found)),
		zap.Any("kinds", countKinds(found)))

	return &FileResult{
		RunID:      runID,
		InputPath:  input,
		OutputPath: output,
		Format:     format,
		Entities:   found,
	}, nil
}

// InspectFile 抽取文件中每个段落的实体，不写出任何文件
func (r *Redactor) InspectFile(ctx context.Context, input string) ([]entity.Entity, error) {
	format, ok := r.documents.FormatForPath(input)
	if !ok {
		return nil, unsupportedFileType(input, r.documents.Extensions())
	}

	proc, err := r.documents.GetProcessor(format, r.logger)
	if err != nil {
		return nil, err
	}
	doc, err := r.parse(ctx, proc, input)
	if err != nil {
		return nil, err
	}

	var all []entity.Entity
	for _, p := range doc.Paragraphs() {
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		found, err := r.extractor.Extract(ctx, text)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}
	return all, nil
}

func (r *Redactor) parse(ctx context.Context, proc document.Processor, input string) (*document.Document, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	doc, err := proc.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", input, err)
	}
	return doc, nil
}

func (r *Redactor) render(ctx context.Context, proc document.Processor, doc *document.Document, output string) (err error) {
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(output)
		}
	}()

	if err := proc.Render(ctx, doc, f); err != nil {
		return fmt.Errorf("failed to save %s: %w", output, err)
	}
	return nil
}

func countKinds(entities []entity.Entity) map[string]int {
	counts := make(map[string]int)
	for _, e := range entities {
		counts[string(e.Kind)]++
	}
	return counts
}

// IsConfigError 判断是否为配置错误
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
