// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"storyboard-ai-api/internal/domain/entity"
)

// UsageRepository 用量记录仓储实现
type UsageRepository struct {
	client *Client
}

// NewUsageRepository 创建用量记录仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

// Create 写入一条用量记录
func (r *UsageRepository) Create(ctx context.Context, event *entity.UsageEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create usage event: %w", err)
	}
	return nil
}

// GetCreditsUsed 统计用户在时间窗口内消耗的积分
func (r *UsageRepository) GetCreditsUsed(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.GetCreditsUsed")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.UsageEvent{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Select("COALESCE(SUM(credits),0)").
		Scan(&total).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get credits used: %w", err)
	}
	return total, nil
}

// ListByUser 按时间倒序获取用户的用量记录，可按来源类型过滤
func (r *UsageRepository) ListByUser(ctx context.Context, userID string, kinds []entity.UsageKind, limit int) ([]*entity.UsageEvent, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if limit <= 0 {
		limit = 50
	}

	var events []*entity.UsageEvent
	if len(kinds) == 0 {
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(limit).
			Find(&events).Error; err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to list usage events: %w", err)
		}
		return events, nil
	}

	ks := make([]string, 0, len(kinds))
	for _, k := range kinds {
		ks = append(ks, string(k))
	}

	if err := db.Raw(`
		SELECT * FROM usage_events
		WHERE user_id = ? AND kind = ANY(?)
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, pq.Array(ks), limit).Find(&events).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	return events, nil
}
