// Package narration 负责叙事风格的解析：远程风格库、静态注册表与兜底描述
package narration

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"story-weaver-api/pkg/logger"
)

// StyleMetadata 远程风格库中一条风格的元数据
type StyleMetadata struct {
	StyleName         string   `json:"style_name"`
	Description       string   `json:"description"`
	Keywords          []string `json:"keywords"`
	SourceTextSnippet string   `json:"source_text_snippet"`
}

// Empty 元数据是否不含任何有效字段
func (m *StyleMetadata) Empty() bool {
	if m == nil {
		return true
	}
	return strings.TrimSpace(m.StyleName) == "" &&
		strings.TrimSpace(m.Description) == "" &&
		len(m.Keywords) == 0 &&
		strings.TrimSpace(m.SourceTextSnippet) == ""
}

// StyleStore 按风格 ID 获取元数据的外部存储
// 不存在时返回 (nil, nil)
type StyleStore interface {
	Fetch(ctx context.Context, styleID string) (*StyleMetadata, error)
}

// StoreOpener 建立远程风格库连接
type StoreOpener func(ctx context.Context) (StyleStore, error)

// StoreGate 远程风格库的惰性单例
// 成功初始化至多一次；失败时每次调用重试，但告警只输出一次
type StoreGate struct {
	open StoreOpener

	mu     sync.RWMutex
	store  StyleStore
	warned bool
	group  singleflight.Group
}

// NewStoreGate 创建风格库闸门，open 为 nil 表示未配置远程风格库
func NewStoreGate(open StoreOpener) *StoreGate {
	return &StoreGate{open: open}
}

// NewReadyStoreGate 使用已就绪的风格库创建闸门
func NewReadyStoreGate(store StyleStore) *StoreGate {
	return &StoreGate{store: store}
}

// EnsureInitialized 确保远程风格库可用
func (g *StoreGate) EnsureInitialized(ctx context.Context) bool {
	if g == nil {
		return false
	}

	g.mu.RLock()
	ready := g.store != nil
	g.mu.RUnlock()
	if ready {
		return true
	}

	if g.open == nil {
		g.warnOnce(ctx, "remote style store not configured, using static styles", nil)
		return false
	}

	_, err, _ := g.group.Do("init", func() (any, error) {
		g.mu.RLock()
		if g.store != nil {
			g.mu.RUnlock()
			return nil, nil
		}
		g.mu.RUnlock()

		store, err := g.open(ctx)
		if err != nil {
			return nil, err
		}

		g.mu.Lock()
		if g.store == nil {
			g.store = store
		}
		g.mu.Unlock()
		logger.Info(ctx, "remote style store initialized")
		return nil, nil
	})
	if err != nil {
		g.warnOnce(ctx, "remote style store unavailable, falling back to static styles", err)
		return false
	}
	return true
}

// Store 返回已初始化的风格库，未初始化时为 nil
func (g *StoreGate) Store() StyleStore {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store
}

// HealthCheck 远程风格库是否可用；底层实现支持探活时一并检查
func (g *StoreGate) HealthCheck(ctx context.Context) error {
	if !g.EnsureInitialized(ctx) {
		return errors.New("remote style store unavailable")
	}
	if hc, ok := g.Store().(interface{ HealthCheck(context.Context) error }); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (g *StoreGate) warnOnce(ctx context.Context, msg string, err error) {
	g.mu.Lock()
	if g.warned {
		g.mu.Unlock()
		if err != nil {
			logger.Debug(ctx, msg, "error", err.Error())
		}
		return
	}
	g.warned = true
	g.mu.Unlock()

	if err != nil {
		logger.Warn(ctx, msg, "error", err.Error())
		return
	}
	logger.Warn(ctx, msg)
}
