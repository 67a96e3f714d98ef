// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"story-weaver-api/internal/domain/entity"
)

// SessionRepository 会话状态存储
// Get 在会话不存在时返回 errors.ErrSessionNotFound
type SessionRepository interface {
	Get(ctx context.Context, id string) (*entity.StoryState, error)
	Save(ctx context.Context, id string, state *entity.StoryState) error
	Delete(ctx context.Context, id string) error
}
