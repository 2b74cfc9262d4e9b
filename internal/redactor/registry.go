package redactor

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/tagger"
)

// Deps 策略工厂可用的外部能力
type Deps struct {
	// NewTagger 按需创建分词器，只有用到分词的策略才会调用
	NewTagger func() (tagger.Tagger, error)
	// Analyzer 大模型后端，为 nil 时大模型阶段不产出实体
	Analyzer extract.Analyzer
	Logger   *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.NewTagger == nil {
		d.NewTagger = func() (tagger.Tagger, error) {
			return tagger.NewGse()
		}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Factory 根据配置构造抽取器
type Factory func(opts Options, deps Deps) (extract.Extractor, error)

// Registry 策略标识到工厂的映射，由调用方创建并传给 New
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry 创建带全部内置策略的注册表
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for id, f := range builtins() {
		_ = r.Register(id, f)
	}
	return r
}

// Register 注册策略，标识已存在时报错
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("strategy id is empty")
	}
	if factory == nil {
		return fmt.Errorf("strategy %s: factory is nil", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("strategy %s already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// Lookup 查找策略工厂
func (r *Registry) Lookup(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[id]
	return f, ok
}

// IDs 已注册的策略标识，按字母序
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build 构造策略对应的抽取器
func (r *Registry) Build(opts Options, deps Deps) (extract.Extractor, error) {
	factory, ok := r.Lookup(opts.Strategy)
	if !ok {
		return nil, unknownStrategy(opts.Strategy, r.IDs())
	}

	ex, err := factory(opts, deps.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", opts.Strategy, err)
	}
	return ex, nil
}
