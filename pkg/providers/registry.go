package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor 根据配置创建后端
type Constructor func(config Config) Analyzer

// Registry 后端构造器注册表
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register 注册后端构造器
func (r *Registry) Register(name string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("backend %s already registered", name)
	}

	r.constructors[name] = ctor
	return nil
}

// Create 按名称创建后端
func (r *Registry) Create(name string, config Config) (Analyzer, error) {
	r.mu.RLock()
	ctor, exists := r.constructors[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %s not found", name)
	}
	return ctor(config), nil
}

// List 按字母序列出已注册的后端
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
