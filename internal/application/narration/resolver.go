package narration

import (
	"context"
	"fmt"
	"strings"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/pkg/logger"
	"story-weaver-api/pkg/metrics"
)

const (
	tierRemote   = "remote"
	tierStatic   = "static"
	tierFallback = "fallback"
)

// Resolver 将风格 ID 解析为风格描述
// 按 远程风格库 -> 静态注册表 -> 通用兜底 的顺序，不缓存单条结果
type Resolver struct {
	gate *StoreGate
}

// NewResolver 创建解析器
func NewResolver(gate *StoreGate) *Resolver {
	return &Resolver{gate: gate}
}

// Resolve 解析风格，永不失败
func (r *Resolver) Resolve(ctx context.Context, styleID string) entity.StyleDescriptor {
	if d, ok := r.fromRemote(ctx, styleID); ok {
		metrics.StyleResolveTotal.WithLabelValues(tierRemote).Inc()
		return d
	}

	if d, ok := StaticDescriptor(styleID); ok {
		metrics.StyleResolveTotal.WithLabelValues(tierStatic).Inc()
		return d
	}

	logger.Warn(ctx, "narration style not found, using generic descriptor", "style_id", styleID)
	metrics.StyleResolveTotal.WithLabelValues(tierFallback).Inc()
	return fallbackDescriptor(styleID)
}

func (r *Resolver) fromRemote(ctx context.Context, styleID string) (entity.StyleDescriptor, bool) {
	if r == nil || !r.gate.EnsureInitialized(ctx) {
		return entity.StyleDescriptor{}, false
	}

	meta, err := r.gate.Store().Fetch(ctx, styleID)
	if err != nil {
		logger.Warn(ctx, "failed to fetch narration style from remote store", "style_id", styleID, "error", err.Error())
		return entity.StyleDescriptor{}, false
	}
	if meta.Empty() {
		return entity.StyleDescriptor{}, false
	}

	d, err := descriptorFromMetadata(styleID, meta)
	if err != nil {
		logger.Warn(ctx, "invalid narration style metadata", "style_id", styleID, "error", err.Error())
		return entity.StyleDescriptor{}, false
	}
	return d, true
}

func descriptorFromMetadata(styleID string, meta *StyleMetadata) (entity.StyleDescriptor, error) {
	name := strings.TrimSpace(meta.StyleName)
	if name == "" {
		name = styleID
	}
	tone := strings.TrimSpace(meta.Description)
	if tone == "" {
		tone = fmt.Sprintf("Custom style for %s from the style store", styleID)
	}

	inspiredBy := "the provided example text"
	keywords := make([]string, 0, len(meta.Keywords))
	for _, k := range meta.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) > 0 {
		inspiredBy = strings.Join(keywords, ", ")
	}

	var snippet *string
	if s := strings.TrimSpace(meta.SourceTextSnippet); s != "" {
		snippet = &s
	}
	return entity.NewStyleDescriptor(name, tone, inspiredBy, snippet)
}

func fallbackDescriptor(styleID string) entity.StyleDescriptor {
	name := styleID
	if strings.TrimSpace(name) == "" {
		name = "Unnamed Style"
	}
	return entity.StyleDescriptor{
		NameDisplay: name,
		Tone:        "custom (undefined)",
		InspiredBy:  "User defined",
	}
}
