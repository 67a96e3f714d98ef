package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/domain/repository"
	apperrors "story-weaver-api/pkg/errors"
	pkgtracer "story-weaver-api/pkg/tracer"
)

// ArchiveRepository 成稿归档仓储
type ArchiveRepository struct {
	client *Client
}

var _ repository.ArchiveRepository = (*ArchiveRepository)(nil)

// NewArchiveRepository 创建成稿归档仓储
func NewArchiveRepository(client *Client) *ArchiveRepository {
	return &ArchiveRepository{client: client}
}

// Migrate 建表
func (r *ArchiveRepository) Migrate(ctx context.Context) error {
	return r.client.db.WithContext(ctx).AutoMigrate(&entity.StoryArchive{})
}

// Create 写入归档，ID 为空时生成
func (r *ArchiveRepository) Create(ctx context.Context, archive *entity.StoryArchive) error {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.Create",
		trace.WithAttributes(attribute.String("session.id", archive.SessionID)))
	defer span.End()

	if archive.ID == "" {
		archive.ID = uuid.NewString()
	}
	if err := r.client.db.WithContext(ctx).Create(archive).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create story archive")
	}
	return nil
}

// GetByID 根据 ID 获取归档
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*entity.StoryArchive, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.GetByID",
		trace.WithAttributes(attribute.String("archive.id", id)))
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrArchiveNotFound.WithDetail(id)
	}

	var archive entity.StoryArchive
	err := r.client.db.WithContext(ctx).First(&archive, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArchiveNotFound.WithDetail(id)
		}
		pkgtracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get story archive")
	}
	return &archive, nil
}

// ListBySession 分页列出会话的归档，按创建时间倒序
func (r *ArchiveRepository) ListBySession(ctx context.Context, sessionID string, pagination repository.Pagination) (*repository.PagedResult[*entity.StoryArchive], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.ListBySession",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	scoped := func() *gorm.DB {
		return r.client.db.WithContext(ctx).Model(&entity.StoryArchive{}).Where("session_id = ?", sessionID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count story archives")
	}

	archives := make([]*entity.StoryArchive, 0, pagination.Limit())
	err := scoped().Order("created_at DESC").
		Limit(pagination.Limit()).
		Offset(pagination.Offset()).
		Find(&archives).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list story archives")
	}

	return repository.NewPagedResult(archives, total, pagination), nil
}
