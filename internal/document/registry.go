package document

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ProcessorFactory 处理器工厂函数
type ProcessorFactory func(logger *zap.Logger) Processor

// Registry 格式处理器注册表
type Registry struct {
	mu         sync.RWMutex
	processors map[Format]ProcessorFactory
	extensions map[string]Format
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[Format]ProcessorFactory),
		extensions: make(map[string]Format),
	}
}

// DefaultRegistry 创建带内置格式的注册表：.txt/.text 文本，.docx Word 文档
func DefaultRegistry() *Registry {
	r := NewRegistry()

	_ = r.Register(FormatText, func(logger *zap.Logger) Processor {
		return NewTextProcessor(logger)
	})
	_ = r.Register(FormatDOCX, func(logger *zap.Logger) Processor {
		return NewDocxProcessor(logger)
	})

	r.RegisterExtension(".txt", FormatText)
	r.RegisterExtension(".text", FormatText)
	r.RegisterExtension(".docx", FormatDOCX)

	return r
}

// Register 注册处理器到注册表
func (r *Registry) Register(format Format, factory ProcessorFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processors[format]; exists {
		return fmt.Errorf("format %s already registered", format)
	}

	r.processors[format] = factory
	return nil
}

// RegisterExtension 注册文件扩展名映射
func (r *Registry) RegisterExtension(ext string, format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extensions[normalizeExt(ext)] = format
}

// GetProcessor 获取指定格式的处理器
func (r *Registry) GetProcessor(format Format, logger *zap.Logger) (Processor, error) {
	r.mu.RLock()
	factory, exists := r.processors[format]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no processor registered for format: %s", format)
	}

	return factory(logger), nil
}

// FormatForPath 根据文件扩展名获取格式，大小写不敏感
func (r *Registry) FormatForPath(path string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	format, exists := r.extensions[normalizeExt(filepath.Ext(path))]
	if !exists {
		return FormatUnknown, false
	}
	return format, true
}

// Extensions 返回已注册的扩展名（带点号，按字母序）
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

// normalizeExt 去除点号，转小写
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
