// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storyboard-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储实现
type UserRepository struct {
	client *Client
}

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// Update 更新用户
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.UpdateLastLogin")
	defer span.End()

	db := getDB(ctx, r.client.db)
	now := time.Now()
	if err := db.Model(&entity.User{}).Where("id = ?", id).Update("last_login_at", now).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ExistsByEmail 检查邮箱是否存在
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.ExistsByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check email exists: %w", err)
	}
	return count > 0, nil
}

// ResetCredits 条件重置每日积分。WHERE 条件保证并发请求只有一个命中。
func (r *UserRepository) ResetCredits(ctx context.Context, id string, allotment int64, resetAt, staleBefore time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.ResetCredits")
	defer span.End()

	db := getDB(ctx, r.client.db)
	res := db.Model(&entity.User{}).
		Where("id = ? AND credits_reset_at < ?", id, staleBefore).
		Updates(map[string]any{
			"credits":          allotment,
			"credits_reset_at": resetAt,
		})
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, fmt.Errorf("failed to reset credits: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AddCredits 原子加回积分，返回最新余额
func (r *UserRepository) AddCredits(ctx context.Context, id string, amount int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.AddCredits")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var row struct {
		Credits int64
	}
	res := db.Raw(`
		UPDATE users
		SET credits = credits + ?, updated_at = NOW()
		WHERE id = ?
		RETURNING credits
	`, amount, id).Scan(&row)
	if res.Error != nil {
		span.RecordError(res.Error)
		return 0, fmt.Errorf("failed to add credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return row.Credits, nil
}

// DeductCredits 原子扣减积分，余额不足时不修改任何数据
func (r *UserRepository) DeductCredits(ctx context.Context, id string, amount int64) (int64, bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.DeductCredits")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var row struct {
		Credits int64
	}
	res := db.Raw(`
		UPDATE users
		SET credits = credits - ?, updated_at = NOW()
		WHERE id = ? AND credits >= ?
		RETURNING credits
	`, amount, id, amount).Scan(&row)
	if res.Error != nil {
		span.RecordError(res.Error)
		return 0, false, fmt.Errorf("failed to deduct credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// 未命中，读取当前余额供调用方构造错误信息
		var user entity.User
		if err := db.Select("credits").First(&user, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return 0, false, nil
			}
			span.RecordError(err)
			return 0, false, fmt.Errorf("failed to load balance: %w", err)
		}
		return user.Credits, false, nil
	}
	return row.Credits, true, nil
}
