package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/config"
)

type stubEmbedder struct {
	vectors [][]float64
	err     error
}

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[:len(texts)], nil
}

func TestVectorizer_Embed(t *testing.T) {
	v := NewVectorizer(&stubEmbedder{vectors: [][]float64{{0.5, 1}, {2, 3}}}, 2)
	got, err := v.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.5, 1}, {2, 3}}, got)
	assert.Equal(t, 2, v.Dimension())

	empty, err := v.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestVectorizer_Errors(t *testing.T) {
	_, err := NewVectorizer(&stubEmbedder{vectors: [][]float64{{1, 2, 3}}}, 2).Embed(context.Background(), []string{"a"})
	require.Error(t, err)

	_, err = NewVectorizer(&stubEmbedder{err: errors.New("quota")}, 0).Embed(context.Background(), []string{"a"})
	require.ErrorContains(t, err, "quota")

	_, err = NewVectorizer(nil, 0).Embed(context.Background(), []string{"a"})
	require.Error(t, err)
}

func TestNewEinoEmbedder_Validates(t *testing.T) {
	_, err := NewEinoEmbedder(context.Background(), &config.EmbeddingConfig{Model: "m"})
	require.Error(t, err)
	_, err = NewEinoEmbedder(context.Background(), &config.EmbeddingConfig{APIKey: "k"})
	require.Error(t, err)
}
