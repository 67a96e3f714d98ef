// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/session"
	"story-weaver-api/internal/interfaces/http/dto"
	"story-weaver-api/internal/interfaces/http/middleware"
)

// SessionHandler 会话处理器
type SessionHandler struct {
	svc *session.Service
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) respond(c *gin.Context, res *session.Result, err error) {
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.NewActionResponse(res))
}

// CreateSession 创建会话
// @Summary 创建会话
// @Tags Sessions
// @Produce json
// @Success 201 {object} dto.Response[dto.SessionResponse]
// @Router /v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	res, err := h.svc.Create(c.Request.Context())
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Created(c, dto.NewSessionResponse(res.SessionID, res.State))
}

// GetSession 获取会话
// @Summary 获取会话视图
// @Tags Sessions
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	state, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.NewSessionResponse(id, state))
}

// ResetSession 丢弃会话
// @Summary 重置会话
// @Tags Sessions
// @Param id path string true "会话 ID"
// @Success 204
// @Router /v1/sessions/{id} [delete]
func (h *SessionHandler) ResetSession(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context(), c.Param("id")); err != nil {
		dto.AppError(c, err)
		return
	}
	dto.NoContent(c)
}

// SendMessage 发送聊天输入
// @Summary 发送用户消息
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.MessageRequest true "消息"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Router /v1/sessions/{id}/messages [post]
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	res, err := h.svc.SendMessage(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c), req.Content)
	h.respond(c, res, err)
}

// UpdateDetails 更新故事设定
// @Summary 更新题材、背景与基调
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.DetailsRequest true "设定"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Router /v1/sessions/{id}/details [put]
func (h *SessionHandler) UpdateDetails(c *gin.Context) {
	var req dto.DetailsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	res, err := h.svc.UpdateDetails(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c),
		strings.TrimSpace(req.Genre), strings.TrimSpace(req.Setting), strings.TrimSpace(req.Tone))
	h.respond(c, res, err)
}

// ChangeVoice 切换叙事声音
// @Summary 切换叙事声音
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.VoiceRequest true "声音"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sessions/{id}/voice [put]
func (h *SessionHandler) ChangeVoice(c *gin.Context) {
	var req dto.VoiceRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	voiceID := strings.TrimSpace(req.VoiceID)
	if voiceID == "" {
		id, ok := narration.VoiceIDForLabel(req.VoiceOption)
		if !ok {
			dto.BadRequest(c, "unknown voice option: "+req.VoiceOption)
			return
		}
		voiceID = id
	}

	res, err := h.svc.ChangeVoice(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c), voiceID)
	h.respond(c, res, err)
}

// EmulateAuthor 仿写作者风格
// @Summary 按作者名生成叙事风格
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.AuthorRequest true "作者"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Router /v1/sessions/{id}/author [post]
func (h *SessionHandler) EmulateAuthor(c *gin.Context) {
	var req dto.AuthorRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	res, err := h.svc.EmulateAuthor(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c), req.AuthorName)
	h.respond(c, res, err)
}

// AddCharacter 添加角色
// @Summary 添加角色
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body dto.CharacterRequest true "角色"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Router /v1/sessions/{id}/characters [post]
func (h *SessionHandler) AddCharacter(c *gin.Context) {
	var req dto.CharacterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	res, err := h.svc.AddCharacter(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c), req.Name, req.Role)
	h.respond(c, res, err)
}

// CompileStory 整本编译
// @Summary 生成大纲、初稿与润色稿
// @Tags Sessions
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.ActionResponse]
// @Router /v1/sessions/{id}/compile [post]
func (h *SessionHandler) CompileStory(c *gin.Context) {
	res, err := h.svc.Compile(c.Request.Context(), c.Param("id"), middleware.GetLLMAPIKey(c))
	h.respond(c, res, err)
}

// ListVoices 列出可选叙事声音
// @Summary 可选叙事声音
// @Tags Styles
// @Produce json
// @Success 200 {object} dto.Response[[]dto.VoiceOptionResponse]
// @Router /v1/styles/voices [get]
func ListVoices(c *gin.Context) {
	dto.Success(c, dto.NewVoiceOptionsResponse())
}
