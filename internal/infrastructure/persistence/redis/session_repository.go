package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/domain/repository"
	apperrors "story-weaver-api/pkg/errors"
	"story-weaver-api/pkg/metrics"
	pkgtracer "story-weaver-api/pkg/tracer"
)

const (
	backendLabel     = "redis"
	defaultKeyPrefix = "story_weaver:session:"
)

// SessionRepository Redis 会话仓储，状态以 JSON 快照保存并带 TTL
type SessionRepository struct {
	client *Client
	prefix string
	ttl    time.Duration
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository 创建 Redis 会话仓储
func NewSessionRepository(client *Client, prefix string, ttl time.Duration) *SessionRepository {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

func observe(op string, err error) {
	metrics.SessionStoreOps.WithLabelValues(backendLabel, op, metrics.StatusLabel(err == nil)).Inc()
}

// Get 读取会话状态
func (r *SessionRepository) Get(ctx context.Context, id string) (state *entity.StoryState, err error) {
	ctx, span := tracer.Start(ctx, "redis.SessionGet",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()
	defer func() { observe("get", err) }()

	raw, err := r.client.rdb.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, apperrors.ErrSessionNotFound.WithDetail(id)
		}
		pkgtracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to load session")
	}

	state, err = decodeState(raw)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to decode session")
	}
	return state, nil
}

// Save 写入会话状态并刷新 TTL
func (r *SessionRepository) Save(ctx context.Context, id string, state *entity.StoryState) (err error) {
	ctx, span := tracer.Start(ctx, "redis.SessionSave",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.Int64("redis.ttl_ms", r.ttl.Milliseconds()),
		))
	defer span.End()
	defer func() { observe("save", err) }()

	raw, err := encodeState(state)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to encode session")
	}
	if err = r.client.rdb.Set(ctx, r.key(id), raw, r.ttl).Err(); err != nil {
		pkgtracer.RecordError(span, err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to save session")
	}
	return nil
}

// Delete 删除会话，不存在时不报错
func (r *SessionRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "redis.SessionDelete",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()
	defer func() { observe("delete", err) }()

	if err = r.client.rdb.Del(ctx, r.key(id)).Err(); err != nil {
		pkgtracer.RecordError(span, err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to delete session")
	}
	return nil
}

// encodeState 序列化会话快照，请求级 UIInputs 不写入
func encodeState(state *entity.StoryState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("nil session state")
	}
	return json.Marshal(state)
}

func decodeState(raw []byte) (*entity.StoryState, error) {
	var state entity.StoryState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	state.UIInputs = map[string]any{}
	if state.Agents == nil {
		state.Agents = []entity.CharacterProfile{}
	}
	return &state, nil
}
