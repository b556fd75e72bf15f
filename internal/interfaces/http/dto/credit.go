package dto

import (
	"time"

	"storyboard-ai-api/internal/domain/entity"
)

// CreditBalanceResponse 积分余额响应
type CreditBalanceResponse struct {
	Balance        int64 `json:"balance"`
	DailyAllotment int64 `json:"daily_allotment"`
	MinReserve     int64 `json:"min_reserve"`
}

// UsageEventResponse 用量记录响应
type UsageEventResponse struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id,omitempty"`
	Kind       string `json:"kind"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Chars      int    `json:"chars"`
	Credits    int64  `json:"credits"`
	DurationMs int    `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// ToUsageEventResponse 实体转用量记录响应
func ToUsageEventResponse(e *entity.UsageEvent) *UsageEventResponse {
	if e == nil {
		return nil
	}
	return &UsageEventResponse{
		ID:         e.ID,
		ProjectID:  e.ProjectID,
		Kind:       string(e.Kind),
		Provider:   e.Provider,
		Model:      e.Model,
		Chars:      e.Chars,
		Credits:    e.Credits,
		DurationMs: e.DurationMs,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
