package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"meal-recommender/internal/core/ai/cache"
	"meal-recommender/internal/core/ai/openrouter"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// minCallInterval 對外部服務的最小呼叫間隔
const minCallInterval = time.Second

// Service 生成服務門面，統一處理緩存與呼叫頻率
type Service struct {
	config   *config.Config
	client   *openrouter.Client
	cacheSvc *cache.Service
	mu       sync.Mutex
	lastCall time.Time
}

// NewService 創建生成服務
func NewService(cfg *config.Config, cacheSvc *cache.Service) *Service {
	return &Service{
		config:   cfg,
		client:   openrouter.NewClient(cfg),
		cacheSvc: cacheSvc,
	}
}

// Enabled 外部生成能力是否可用
func (s *Service) Enabled() bool {
	return s.config.OpenRouter.Enabled && s.config.OpenRouter.APIKey != ""
}

// Complete 執行單次生成，優先回傳緩存結果
func (s *Service) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if !s.Enabled() {
		return "", common.ErrExternalService
	}

	cacheKey := systemInstruction + "\n" + prompt
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.Get(ctx, cacheKey); err == nil && cached != "" {
			return cached, nil
		}
	}

	s.throttle()

	ctx, cancel := context.WithTimeout(ctx, s.config.OpenRouter.Timeout)
	defer cancel()

	start := time.Now()
	content, err := s.client.Generate(ctx, openrouter.Request{
		SystemInstruction: systemInstruction,
		UserPrompt:        prompt,
	})
	if err != nil {
		common.LogError("生成請求失敗",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return "", err
	}

	content = sanitizeCompletion(content)
	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, cacheKey, content); err != nil {
			common.LogWarn("生成結果緩存失敗", zap.Error(err))
		}
	}

	return content, nil
}

// throttle 控制最小呼叫間隔，避免短時間連續打外部服務
func (s *Service) throttle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := minCallInterval - time.Since(s.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	s.lastCall = time.Now()
}

// sanitizeCompletion 去除模型偶爾加上的 code fence 與前後空白
func sanitizeCompletion(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
