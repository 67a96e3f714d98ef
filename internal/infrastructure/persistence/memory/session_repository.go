// Package memory 提供进程内会话存储
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/domain/repository"
	apperrors "story-weaver-api/pkg/errors"
	"story-weaver-api/pkg/metrics"
)

const backendLabel = "memory"

type item struct {
	raw       []byte
	expiresAt time.Time
}

// SessionRepository 进程内会话仓储，保存 JSON 快照，ttl 为 0 时不过期
type SessionRepository struct {
	mu    sync.Mutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository 创建内存会话仓储
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
	}
}

func observe(op string, err error) {
	metrics.SessionStoreOps.WithLabelValues(backendLabel, op, metrics.StatusLabel(err == nil)).Inc()
}

func (r *SessionRepository) expired(it item) bool {
	return !it.expiresAt.IsZero() && !r.now().Before(it.expiresAt)
}

// Get 读取会话状态
func (r *SessionRepository) Get(_ context.Context, id string) (state *entity.StoryState, err error) {
	defer func() { observe("get", err) }()

	r.mu.Lock()
	it, ok := r.items[id]
	if ok && r.expired(it) {
		delete(r.items, id)
		metrics.ActiveSessions.Set(float64(len(r.items)))
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound.WithDetail(id)
	}

	state = &entity.StoryState{}
	if err := json.Unmarshal(it.raw, state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to decode session")
	}
	if err := state.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "invalid session snapshot")
	}
	state.UIInputs = map[string]any{}
	return state, nil
}

// Save 写入会话快照
func (r *SessionRepository) Save(_ context.Context, id string, state *entity.StoryState) (err error) {
	defer func() { observe("save", err) }()

	raw, err := json.Marshal(state)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode session")
	}

	it := item{raw: raw}
	if r.ttl > 0 {
		it.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.items[id] = it
	metrics.ActiveSessions.Set(float64(len(r.items)))
	r.mu.Unlock()
	return nil
}

// Delete 删除会话
func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	metrics.ActiveSessions.Set(float64(len(r.items)))
	r.mu.Unlock()

	observe("delete", nil)
	return nil
}

// Sweep 清理过期会话，返回清理数量
func (r *SessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, it := range r.items {
		if r.expired(it) {
			delete(r.items, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.items)))
	return n
}

// RunSweeper 定期清理过期会话，直到 ctx 结束
func (r *SessionRepository) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
