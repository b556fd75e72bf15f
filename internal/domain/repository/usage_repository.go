// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"storyboard-ai-api/internal/domain/entity"
)

// UsageRepository 用量记录仓储接口
type UsageRepository interface {
	// Create 写入一条用量记录
	Create(ctx context.Context, event *entity.UsageEvent) error

	// GetCreditsUsed 统计用户在时间窗口内消耗的积分
	GetCreditsUsed(ctx context.Context, userID string, start, end time.Time) (int64, error)

	// ListByUser 按时间倒序获取用户的用量记录，可按来源类型过滤
	ListByUser(ctx context.Context, userID string, kinds []entity.UsageKind, limit int) ([]*entity.UsageEvent, error)
}
