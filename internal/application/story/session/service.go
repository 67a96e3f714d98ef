package session

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/domain/repository"
	apperrors "story-weaver-api/pkg/errors"
	"story-weaver-api/pkg/logger"
)

// Action 在已加锁、已加载的会话状态上执行的编排操作
type Action func(ctx context.Context, o *Orchestrator, state *entity.StoryState) Outcome

// Result 一次会话操作的结果
type Result struct {
	SessionID string
	State     *entity.StoryState
	Outcome   Outcome
}

// Service 会话应用服务：加载状态、按会话串行执行编排操作并回写
type Service struct {
	orch   *Orchestrator
	repo   repository.SessionRepository
	locker *Locker
}

// NewService 创建会话服务
func NewService(orch *Orchestrator, repo repository.SessionRepository, locker *Locker) *Service {
	if locker == nil {
		locker = NewLocker()
	}
	return &Service{orch: orch, repo: repo, locker: locker}
}

// Create 创建新会话
func (s *Service) Create(ctx context.Context) (*Result, error) {
	id := uuid.NewString()
	ctx = WithSessionID(ctx, id)

	state := entity.NewStoryState(s.orch.Resolver().Resolve(ctx, entity.DefaultVoiceID))
	if err := s.repo.Save(ctx, id, state); err != nil {
		return nil, err
	}
	logger.Info(ctx, "session created")
	return &Result{SessionID: id, State: state, Outcome: ok()}, nil
}

// Get 读取会话状态
func (s *Service) Get(ctx context.Context, id string) (*entity.StoryState, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("session id is required")
	}
	return s.repo.Get(WithSessionID(ctx, id), id)
}

// Reset 丢弃会话，之后需重新创建
func (s *Service) Reset(ctx context.Context, id string) error {
	unlock := s.locker.Lock(id)
	defer unlock()

	ctx = WithSessionID(ctx, id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "session reset")
	return nil
}

// Apply 在会话锁内加载状态、注入凭证、执行操作并保存
func (s *Service) Apply(ctx context.Context, id, apiKey string, action Action) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("session id is required")
	}
	unlock := s.locker.Lock(id)
	defer unlock()

	ctx = WithSessionID(ctx, id)
	state, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	state.SetUIInput(entity.UIInputAPIKey, apiKey)

	out := action(ctx, s.orch, state)

	if err := s.repo.Save(ctx, id, state); err != nil {
		return nil, err
	}
	return &Result{SessionID: id, State: state, Outcome: out}, nil
}

// SendMessage 处理一条聊天输入
func (s *Service) SendMessage(ctx context.Context, id, apiKey, content string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.HandleUserInput(ctx, st, content)
	})
}

// UpdateDetails 更新题材、背景与基调
func (s *Service) UpdateDetails(ctx context.Context, id, apiKey, genre, setting, tone string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.UpdateDetails(ctx, st, genre, setting, tone)
	})
}

// ChangeVoice 切换叙事声音
func (s *Service) ChangeVoice(ctx context.Context, id, apiKey, voiceID string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.ChangeNarrationVoice(ctx, st, voiceID)
	})
}

// EmulateAuthor 仿写指定作者的叙事风格
func (s *Service) EmulateAuthor(ctx context.Context, id, apiKey, author string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.EmulateAuthor(ctx, st, author)
	})
}

// AddCharacter 通过表单添加角色
func (s *Service) AddCharacter(ctx context.Context, id, apiKey, name, role string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.AddCharacter(ctx, st, name, role)
	})
}

// Compile 整本编译
func (s *Service) Compile(ctx context.Context, id, apiKey string) (*Result, error) {
	return s.Apply(ctx, id, apiKey, func(ctx context.Context, o *Orchestrator, st *entity.StoryState) Outcome {
		return o.CompileFullStory(ctx, st)
	})
}
