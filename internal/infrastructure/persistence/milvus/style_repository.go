package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/config"
	"story-weaver-api/pkg/logger"
	"story-weaver-api/pkg/metrics"
	pkgtracer "story-weaver-api/pkg/tracer"
)

// StyleRepository 叙事风格向量仓储
type StyleRepository struct {
	client     *Client
	collection string
	dimension  int
}

var _ narration.StyleStore = (*StyleRepository)(nil)

// NewStyleRepository 创建叙事风格仓储
func NewStyleRepository(c *Client, dimension int) *StyleRepository {
	return &StyleRepository{
		client:     c,
		collection: c.styleCollection(),
		dimension:  dimension,
	}
}

func (r *StyleRepository) ready() error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	return nil
}

func (r *StyleRepository) observe(start time.Time, err error) {
	metrics.MilvusQueryDuration.WithLabelValues(r.collection).Observe(time.Since(start).Seconds())
	metrics.MilvusQueryTotal.WithLabelValues(r.collection, metrics.StatusLabel(err == nil)).Inc()
}

// HealthCheck 检查风格集合可访问
func (r *StyleRepository) HealthCheck(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.client.HealthCheck(ctx)
}

// EnsureCollection 集合不存在时创建集合与 HNSW 索引，并加载到内存
func (r *StyleRepository) EnsureCollection(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureCollection",
		trace.WithAttributes(attribute.String("collection", r.collection)))
	defer span.End()

	has, err := r.client.HasCollection(ctx, r.collection)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		schema := NarrationStylesSchema(r.client.CollectionName(r.collection), r.dimension)
		if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			pkgtracer.RecordError(span, err)
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := r.createIndex(ctx); err != nil {
			pkgtracer.RecordError(span, err)
			return err
		}
		logger.Info(ctx, "milvus collection created", "collection", schema.CollectionName, "dim", r.dimension)
	}

	if err := r.client.LoadCollection(ctx, r.collection); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (r *StyleRepository) createIndex(ctx context.Context) error {
	cfg := r.client.config
	idx, err := entity.NewIndexHNSW(metricType(cfg), hnswM(cfg), hnswEf(cfg))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := r.client.milvus.CreateIndex(ctx, r.client.CollectionName(r.collection), FieldVector, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Fetch 按风格 ID 读取元数据，不存在时返回 nil, nil
func (r *StyleRepository) Fetch(ctx context.Context, styleID string) (meta *narration.StyleMetadata, err error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "milvus.FetchStyle",
		trace.WithAttributes(attribute.String("style_id", styleID)))
	defer span.End()

	start := time.Now()
	defer func() { r.observe(start, err) }()

	rs, err := r.client.milvus.Query(ctx, r.client.CollectionName(r.collection), nil, idExpr(styleID), outputFields)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to query style: %w", err)
	}
	meta, err = metadataFromResult(rs)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("found", meta != nil))
	return meta, nil
}

// Upsert 写入或覆盖风格记录
func (r *StyleRepository) Upsert(ctx context.Context, docs []*StyleDocument) (err error) {
	if err := r.ready(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertStyles",
		trace.WithAttributes(attribute.Int("count", len(docs))))
	defer span.End()

	start := time.Now()
	defer func() { r.observe(start, err) }()

	cols, err := styleColumns(docs, r.dimension)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return err
	}
	if _, err = r.client.milvus.Upsert(ctx, r.client.CollectionName(r.collection), "", cols...); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to upsert styles: %w", err)
	}
	if err = r.client.milvus.Flush(ctx, r.client.CollectionName(r.collection), false); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to flush styles: %w", err)
	}
	return nil
}

// idExpr 构建主键过滤表达式，转义引号与反斜杠
func idExpr(styleID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(styleID)
	return fmt.Sprintf(`%s == "%s"`, FieldStyleID, escaped)
}

func styleColumns(docs []*StyleDocument, dim int) ([]entity.Column, error) {
	n := len(docs)
	ids := make([]string, n)
	vectors := make([][]float32, n)
	names := make([]string, n)
	descriptions := make([]string, n)
	keywords := make([]string, n)
	snippets := make([]string, n)

	for i, d := range docs {
		if d == nil || d.StyleID == "" {
			return nil, fmt.Errorf("style document %d has no id", i)
		}
		if dim > 0 && len(d.Vector) != dim {
			return nil, fmt.Errorf("style %s vector dimension %d, want %d", d.StyleID, len(d.Vector), dim)
		}
		kw, err := json.Marshal(d.Keywords)
		if err != nil {
			return nil, fmt.Errorf("marshal keywords for %s: %w", d.StyleID, err)
		}
		ids[i] = d.StyleID
		vectors[i] = d.Vector
		names[i] = d.StyleName
		descriptions[i] = d.Description
		keywords[i] = string(kw)
		snippets[i] = d.SourceTextSnippet
	}
	if dim <= 0 {
		dim = len(vectors[0])
	}

	return []entity.Column{
		entity.NewColumnVarChar(FieldStyleID, ids),
		entity.NewColumnFloatVector(FieldVector, dim, vectors),
		entity.NewColumnVarChar(FieldStyleName, names),
		entity.NewColumnVarChar(FieldDescription, descriptions),
		entity.NewColumnVarChar(FieldKeywords, keywords),
		entity.NewColumnVarChar(FieldSnippet, snippets),
	}, nil
}

func varCharAt(rs client.ResultSet, field string, i int) string {
	col, ok := rs.GetColumn(field).(*entity.ColumnVarChar)
	if !ok || i >= col.Len() {
		return ""
	}
	return col.Data()[i]
}

// metadataFromResult 取第一行结果，无结果时返回 nil
func metadataFromResult(rs client.ResultSet) (*narration.StyleMetadata, error) {
	idCol, ok := rs.GetColumn(FieldStyleID).(*entity.ColumnVarChar)
	if !ok || idCol.Len() == 0 {
		return nil, nil
	}

	meta := &narration.StyleMetadata{
		StyleName:         varCharAt(rs, FieldStyleName, 0),
		Description:       varCharAt(rs, FieldDescription, 0),
		SourceTextSnippet: varCharAt(rs, FieldSnippet, 0),
	}
	if raw := varCharAt(rs, FieldKeywords, 0); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords for %s: %w", idCol.Data()[0], err)
		}
	}
	return meta, nil
}

func metricType(cfg *config.MilvusConfig) entity.MetricType {
	switch strings.ToUpper(cfg.MetricType) {
	case "L2":
		return entity.L2
	case "IP":
		return entity.IP
	default:
		return entity.COSINE
	}
}

func hnswM(cfg *config.MilvusConfig) int {
	if cfg.HNSWM > 0 {
		return cfg.HNSWM
	}
	return 16
}

func hnswEf(cfg *config.MilvusConfig) int {
	if cfg.HNSWEfConstruction > 0 {
		return cfg.HNSWEfConstruction
	}
	return 200
}

// StoreOpener 返回风格库的惰性打开函数，供 narration.StoreGate 使用
func StoreOpener(cfg *config.MilvusConfig, dimension int) narration.StoreOpener {
	return func(ctx context.Context) (narration.StyleStore, error) {
		c, err := NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := NewStyleRepository(c, dimension)
		if err := repo.EnsureCollection(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
		return repo, nil
	}
}
