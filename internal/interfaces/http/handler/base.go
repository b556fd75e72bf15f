// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"fmt"
	"strings"

	"storyboard-ai-api/internal/application/credit"
	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// resolveProviderModel 解析 LLM Provider 和 Model
func resolveProviderModel(cfg *config.Config, provider, model string) (string, string, error) {
	if cfg == nil {
		return "", "", fmt.Errorf("server config not configured")
	}

	p := strings.TrimSpace(provider)
	if p == "" {
		p = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if p == "" {
		return "", "", fmt.Errorf("llm provider not specified")
	}
	if len(p) > 32 {
		return "", "", fmt.Errorf("llm provider too long")
	}

	providerCfg, ok := cfg.LLM.Providers[p]
	if !ok {
		return "", "", fmt.Errorf("llm provider not found: %s", p)
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = strings.TrimSpace(providerCfg.Model)
	}
	if len(m) > 64 {
		return "", "", fmt.Errorf("llm model too long")
	}
	return p, m, nil
}

// writeCreditError 将积分相关错误映射为 HTTP 响应
func writeCreditError(c *gin.Context, err error) {
	var insufficient *credit.InsufficientCreditsError
	if errors.As(err, &insufficient) {
		metrics.CreditDeductFailures.WithLabelValues("insufficient").Inc()
		dto.PaymentRequired(c, "insufficient credits", &dto.ErrorDetail{
			ErrorCode: "insufficient_credits",
			Details:   insufficient.Error(),
			Suggestions: []string{
				"credits reset at the start of each day",
				"shorten the prompt or wait for the daily reset",
			},
		})
		return
	}
	dto.InternalError(c, "credit check failed")
}
