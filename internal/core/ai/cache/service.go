package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Service 生成結果緩存服務，停用時所有操作直接略過
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService 創建緩存服務
func NewService(cfg *config.CacheConfig) (*Service, error) {
	if !cfg.Enabled {
		common.LogInfo("Completion cache disabled")
		return &Service{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存的生成結果
func (s *Service) Get(ctx context.Context, prompt string) (string, error) {
	if !s.config.Enabled || s.client == nil {
		return "", common.ErrCacheDisabled
	}

	key := s.generateKey(prompt)
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("completion", key)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("completion", key)
	return value, nil
}

// Set 緩存生成結果
func (s *Service) Set(ctx context.Context, prompt, value string) error {
	if !s.config.Enabled || s.client == nil {
		return nil
	}

	key := s.generateKey(prompt)
	if err := s.client.Set(ctx, key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// generateKey 以 prompt 的 SHA-256 生成緩存鍵
func (s *Service) generateKey(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("ai:completion:%s", hex.EncodeToString(hash[:]))
}
