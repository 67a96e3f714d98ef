package repository

import (
	"context"

	"story-weaver-api/internal/domain/entity"
)

// ArchiveRepository 成稿归档存储
type ArchiveRepository interface {
	Create(ctx context.Context, archive *entity.StoryArchive) error
	GetByID(ctx context.Context, id string) (*entity.StoryArchive, error)
	ListBySession(ctx context.Context, sessionID string, pagination Pagination) (*PagedResult[*entity.StoryArchive], error)
}
