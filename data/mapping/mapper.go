package mapping

import (
	"dbmap/logging"
)

// Mapper 持有元数据注册表，提供水合与参数绑定
//
// Mapper 可以并发使用；单个 IReader/ICommand 只能由一个 goroutine 使用。
type Mapper struct {
	registry *Registry
	logger   logging.Logger
}

// Option Mapper 选项
type Option func(*Mapper)

// WithRegistry 共享已有的注册表
func WithRegistry(r *Registry) Option {
	return func(m *Mapper) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithLogger 设置日志
func WithLogger(l logging.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMapper 创建 Mapper；未指定注册表时使用默认缓存配置新建一个
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.GetLogger().WithFields(logging.Component("mapping"))
	}
	if m.registry == nil {
		m.registry = NewRegistry(WithRegistryLogger(m.logger))
	}
	return m
}

// Registry 返回使用中的注册表
func (m *Mapper) Registry() *Registry { return m.registry }
