package wire

import (
	"context"
	"fmt"
	"time"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/primer"
	"story-weaver-api/internal/application/story/session"
	"story-weaver-api/internal/config"
	"story-weaver-api/internal/domain/repository"
	"story-weaver-api/internal/infrastructure/persistence/memory"
	"story-weaver-api/internal/infrastructure/persistence/milvus"
	"story-weaver-api/internal/infrastructure/persistence/postgres"
	"story-weaver-api/internal/infrastructure/persistence/redis"
	"story-weaver-api/internal/interfaces/http/handler"
	"story-weaver-api/internal/interfaces/http/middleware"
	"story-weaver-api/internal/workflow/chain"
	workflowpipeline "story-weaver-api/internal/workflow/pipeline"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
	"story-weaver-api/pkg/logger"
)

const (
	storeRedis    = "redis"
	sweepInterval = 10 * time.Minute
)

func needsRedis(cfg *config.Config) bool {
	return cfg.Session.Store == storeRedis || cfg.Security.RateLimit.Enabled
}

// ProvideRedisClient 会话存储或限流需要时创建 Redis 客户端，否则为 nil
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !needsRedis(cfg) {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSessionRepository 按配置选择会话存储
func ProvideSessionRepository(ctx context.Context, cfg *config.Config, rc *redis.Client) (repository.SessionRepository, func(), error) {
	if cfg.Session.Store == storeRedis {
		if rc == nil {
			return nil, nil, fmt.Errorf("session store redis requires a redis client")
		}
		logger.Info(ctx, "session store configured", "backend", storeRedis)
		return redis.NewSessionRepository(rc, cfg.Session.KeyPrefix, cfg.Session.TTL), func() {}, nil
	}

	repo := memory.NewSessionRepository(cfg.Session.TTL)
	sweepCtx, cancel := context.WithCancel(context.Background())
	go repo.RunSweeper(sweepCtx, sweepInterval)
	logger.Info(ctx, "session store configured", "backend", "memory")
	return repo, cancel, nil
}

// ProvideRateLimiter 启用限流且有 Redis 时返回限流器
func ProvideRateLimiter(cfg *config.Config, rc *redis.Client) middleware.RateLimiter {
	if !cfg.Security.RateLimit.Enabled || rc == nil {
		return nil
	}
	return redis.NewRateLimiter(rc, "")
}

// ProvidePostgresClient 启用归档时连接 PostgreSQL，否则为 nil
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Features.Archive.Enabled {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideArchiveRepository 建表并返回归档仓储；未启用时为 nil
func ProvideArchiveRepository(ctx context.Context, pg *postgres.Client) (repository.ArchiveRepository, error) {
	if pg == nil {
		return nil, nil
	}
	repo := postgres.NewArchiveRepository(pg)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate story archives: %w", err)
	}
	return repo, nil
}

// ProvideStoreGate 远程风格库闸门，连接延迟到首次解析
func ProvideStoreGate(cfg *config.Config) *narration.StoreGate {
	if !cfg.Features.RemoteStyles.Enabled {
		return narration.NewStoreGate(nil)
	}
	return narration.NewStoreGate(milvus.StoreOpener(&cfg.Vector.Milvus, cfg.Embedding.Dimension))
}

// ProvideGenerator 基于 eino 的生成器
func ProvideGenerator(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry, cfg *config.Config) workflowport.Generator {
	return chain.NewEinoGenerator(factory, registry, cfg.LLM.DefaultProvider)
}

// ProvideCompilePipeline 整本编译流水线
func ProvideCompilePipeline(gen workflowport.Generator, cfg *config.Config) *workflowpipeline.CompilePipeline {
	t := cfg.LLM.Temperatures
	return workflowpipeline.NewCompilePipeline(gen, workflowpipeline.Temperatures{
		Outline: t.Outline,
		Draft:   t.Draft,
		Refine:  t.Refine,
	})
}

// ProvidePrimer 上下文预置器
func ProvidePrimer(cfg *config.Config) *primer.Primer {
	return primer.New(cfg.Session.FreshSessionMaxMessages, nil)
}

// ProvideOrchestrator 会话编排器
func ProvideOrchestrator(
	gen workflowport.Generator,
	pipeline *workflowpipeline.CompilePipeline,
	resolver *narration.Resolver,
	pr *primer.Primer,
	archives repository.ArchiveRepository,
	cfg *config.Config,
) *session.Orchestrator {
	var opts []session.Option
	if archives != nil {
		opts = append(opts, session.WithArchive(archives))
	}
	return session.NewOrchestrator(gen, pipeline, resolver, pr, session.Settings{
		HistoryLimit:      cfg.Session.HistoryLimit,
		SlideTemperature:  cfg.LLM.Temperatures.Slide,
		AuthorTemperature: cfg.LLM.Temperatures.Author,
	}, opts...)
}

// ProvideArchiveHandler 未启用归档时为 nil，路由不注册归档接口
func ProvideArchiveHandler(archives repository.ArchiveRepository) *handler.ArchiveHandler {
	if archives == nil {
		return nil
	}
	return handler.NewArchiveHandler(archives)
}

// ProvideHealthHandler 只登记已配置的依赖
func ProvideHealthHandler(cfg *config.Config, rc *redis.Client, pg *postgres.Client, gate *narration.StoreGate) *handler.HealthHandler {
	var deps []handler.Dependency
	if rc != nil {
		deps = append(deps, handler.Dependency{Name: "redis", Checker: rc, Required: true})
	}
	if pg != nil {
		deps = append(deps, handler.Dependency{Name: "postgres", Checker: pg, Required: true})
	}
	if cfg.Features.RemoteStyles.Enabled {
		// 风格库不可用时回退静态注册表，不影响就绪
		deps = append(deps, handler.Dependency{Name: "milvus", Checker: gate})
	}
	return handler.NewHealthHandler(cfg.App.Version, deps...)
}
