package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"story-weaver-api/internal/config"
	workflowport "story-weaver-api/internal/workflow/port"
	apperrors "story-weaver-api/pkg/errors"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// maxCachedModels 缓存的 ChatModel 上限，超过后整体重建
const maxCachedModels = 64

// EinoFactory 管理多个 Eino ChatModel 客户端实例
// 同一 provider 下按凭证区分实例，请求可携带自己的 API Key
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

var _ workflowport.ChatModelFactory = (*EinoFactory)(nil)

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// DefaultProvider 返回默认 provider 名称
func (f *EinoFactory) DefaultProvider() string {
	return f.config.DefaultProvider
}

// Get 获取指定名称的 ChatModel；name 为空使用默认 provider，apiKey 为空使用配置中的凭证
func (f *EinoFactory) Get(ctx context.Context, name, apiKey string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}
	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = providerCfg.APIKey
	}
	if key == "" {
		return nil, apperrors.ErrCredentialsMissing.WithDetail("provider " + name)
	}

	cacheKey := name + ":" + fingerprint(key)
	f.mu.RLock()
	m, ok := f.models[cacheKey]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[cacheKey]; ok {
		return m, nil
	}

	// 使用 Eino 的 OpenAI 适配器
	cmCfg := &openai.ChatModelConfig{
		APIKey:  key,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	if providerCfg.MaxTokens > 0 {
		maxTokens := providerCfg.MaxTokens
		cmCfg.MaxTokens = &maxTokens
	}
	chatModel, err := openai.NewChatModel(ctx, cmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	if len(f.models) >= maxCachedModels {
		f.models = make(map[string]model.BaseChatModel)
	}
	f.models[cacheKey] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel（使用配置凭证）
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "", "")
}

// fingerprint 凭证摘要，避免明文出现在缓存键中
func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
