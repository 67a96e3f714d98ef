//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/session"
	"story-weaver-api/internal/config"
	"story-weaver-api/internal/infrastructure/llm"
	"story-weaver-api/internal/interfaces/http/handler"
	"story-weaver-api/internal/interfaces/http/router"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		WorkflowSet,
		SessionSet,
		RouterSet,
	)
	return nil, nil, nil
}

// StorageSet 存储层提供者集合
var StorageSet = wire.NewSet(
	ProvideRedisClient,
	ProvideSessionRepository,
	ProvideRateLimiter,
	ProvidePostgresClient,
	ProvideArchiveRepository,
	ProvideStoreGate,
)

// WorkflowSet 生成链路提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	workflowprompt.NewRegistry,
	ProvideGenerator,
	ProvideCompilePipeline,
)

// SessionSet 会话编排提供者集合
var SessionSet = wire.NewSet(
	narration.NewResolver,
	ProvidePrimer,
	ProvideOrchestrator,
	session.NewLocker,
	session.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewSessionHandler,
	ProvideArchiveHandler,
	ProvideHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
