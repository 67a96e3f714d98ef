// Package embedding 提供基于 Eino 的向量化客户端
package embedding

import (
	"context"
	"fmt"

	"story-weaver-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// NewEinoEmbedder 创建基于 Eino 的 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	ecfg := &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}
	if cfg.Dimension > 0 {
		dim := cfg.Dimension
		ecfg.Dimensions = &dim
	}

	// 使用 Eino 的 OpenAI 适配器
	embedder, err := openai.NewEmbedder(ctx, ecfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}
	return embedder, nil
}

// Vectorizer 将文本转换为 float32 向量，匹配 Milvus FloatVector 字段
type Vectorizer struct {
	embedder  embedding.Embedder
	dimension int
}

func NewVectorizer(embedder embedding.Embedder, dimension int) *Vectorizer {
	return &Vectorizer{embedder: embedder, dimension: dimension}
}

// Dimension 向量维度
func (v *Vectorizer) Dimension() int {
	return v.dimension
}

// Embed 批量向量化，返回与输入等长的结果
func (v *Vectorizer) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if v == nil || v.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}

	raw, err := v.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed strings: %w", err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(raw), len(texts))
	}

	out := make([][]float32, len(raw))
	for i, vec := range raw {
		if v.dimension > 0 && len(vec) != v.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(vec), v.dimension)
		}
		f := make([]float32, len(vec))
		for j, x := range vec {
			f[j] = float32(x)
		}
		out[i] = f
	}
	return out, nil
}
