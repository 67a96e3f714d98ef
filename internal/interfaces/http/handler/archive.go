package handler

import (
	"github.com/gin-gonic/gin"

	"story-weaver-api/internal/domain/repository"
	"story-weaver-api/internal/interfaces/http/dto"
)

// ArchiveHandler 成稿归档处理器
type ArchiveHandler struct {
	repo repository.ArchiveRepository
}

// NewArchiveHandler 创建成稿归档处理器
func NewArchiveHandler(repo repository.ArchiveRepository) *ArchiveHandler {
	return &ArchiveHandler{repo: repo}
}

// GetArchive 获取成稿归档
// @Summary 获取成稿归档
// @Tags Archives
// @Produce json
// @Param id path string true "归档 ID"
// @Success 200 {object} dto.Response[dto.ArchiveResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/archives/{id} [get]
func (h *ArchiveHandler) GetArchive(c *gin.Context) {
	archive, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToArchiveResponse(archive))
}

// ListSessionArchives 列出会话的成稿归档
// @Summary 会话成稿归档列表
// @Tags Archives
// @Produce json
// @Param id path string true "会话 ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ArchiveListResponse]
// @Router /v1/sessions/{id}/archives [get]
func (h *ArchiveHandler) ListSessionArchives(c *gin.Context) {
	pagination := bindPagination(c)
	result, err := h.repo.ListBySession(c.Request.Context(), c.Param("id"), pagination)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	items := make([]*dto.ArchiveResponse, 0, len(result.Items))
	for _, a := range result.Items {
		items = append(items, dto.ToArchiveResponse(a))
	}
	dto.SuccessWithPage(c, &dto.ArchiveListResponse{Archives: items},
		dto.NewPageMeta(result.Page, result.PageSize, result.Total))
}
