package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter API 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// Request 單次生成請求
type Request struct {
	SystemInstruction string
	UserPrompt        string
	MaxTokens         int
	Temperature       float64
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://meal-recommender.com").
		SetHeader("X-Title", "Meal Recommender")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.OpenRouter.MaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.config.OpenRouter.Temperature
	}

	messages := make([]map[string]string, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": req.SystemInstruction,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": req.UserPrompt,
	})

	body := map[string]interface{}{
		"model":       c.config.OpenRouter.Model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("messages", len(messages)),
		zap.Int("max_tokens", maxTokens),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	if err != nil {
		common.LogError("Failed to send request to OpenRouter",
			zap.Error(err),
			zap.String("model", c.config.OpenRouter.Model),
		)
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenRouter returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.config.OpenRouter.Model),
		)
		return "", fmt.Errorf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogInfo("Successfully generated response from OpenRouter",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("content_length", len(content)),
	)
	return content, nil
}
