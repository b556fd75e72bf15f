// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"
	"strings"

	"storyboard-ai-api/internal/application/credit"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/internal/interfaces/http/middleware"
	"storyboard-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CreditHandler 积分查询处理器
type CreditHandler struct {
	ledger    *credit.Ledger
	usageRepo repository.UsageRepository
}

// NewCreditHandler 创建积分查询处理器
func NewCreditHandler(ledger *credit.Ledger, usageRepo repository.UsageRepository) *CreditHandler {
	return &CreditHandler{
		ledger:    ledger,
		usageRepo: usageRepo,
	}
}

// GetBalance 查询当前余额
// @Summary 查询积分余额
// @Description 查询当前用户的积分余额，如已跨天则先完成当日重置
// @Tags Credits
// @Produce json
// @Success 200 {object} dto.Response[dto.CreditBalanceResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/credits [get]
func (h *CreditHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	balance, err := h.ledger.Balance(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get credit balance", err)
		dto.InternalError(c, "failed to get balance")
		return
	}

	dto.Success(c, &dto.CreditBalanceResponse{
		Balance:        balance,
		DailyAllotment: credit.DailyAllotment,
		MinReserve:     credit.MinReserve,
	})
}

// ListUsage 查询用量记录
// @Summary 查询用量记录
// @Description 按时间倒序返回当前用户的扣费记录，可按来源类型过滤
// @Tags Credits
// @Produce json
// @Param kinds query string false "逗号分隔的来源类型（storyboard,outline,image）"
// @Param limit query int false "返回条数" default(50)
// @Success 200 {object} dto.Response[[]dto.UsageEventResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/credits/usage [get]
func (h *CreditHandler) ListUsage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var kinds []entity.UsageKind
	if raw := strings.TrimSpace(c.Query("kinds")); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			switch kind := entity.UsageKind(strings.TrimSpace(k)); kind {
			case entity.UsageKindStoryboard, entity.UsageKindOutline, entity.UsageKindImage:
				kinds = append(kinds, kind)
			default:
				dto.BadRequest(c, "unknown usage kind: "+k)
				return
			}
		}
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			dto.BadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	events, err := h.usageRepo.ListByUser(ctx, userID, kinds, limit)
	if err != nil {
		logger.Error(ctx, "failed to list usage events", err)
		dto.InternalError(c, "failed to list usage")
		return
	}

	items := make([]*dto.UsageEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.ToUsageEventResponse(e))
	}
	dto.Success(c, items)
}
