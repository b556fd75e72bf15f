// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"storyboard-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastLogin 更新最后登录时间
	UpdateLastLogin(ctx context.Context, id string) error

	// ExistsByEmail 检查邮箱是否存在
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ResetCredits 当账户的上次重置时间早于 staleBefore 时，将余额重置为
	// allotment 并把重置时间推进到 resetAt。条件更新保证并发下只有一个
	// 请求真正执行重置。返回是否发生了重置。
	ResetCredits(ctx context.Context, id string, allotment int64, resetAt, staleBefore time.Time) (bool, error)

	// AddCredits 原子加回积分，返回最新余额。用于失败返还。
	AddCredits(ctx context.Context, id string, amount int64) (int64, error)

	// DeductCredits 原子扣减：仅当余额 >= amount 时执行
	// UPDATE ... SET credits = credits - amount，返回扣减后的余额。
	// 余额不足时不做任何修改并返回 ok=false，由调用方决定如何归类。
	DeductCredits(ctx context.Context, id string, amount int64) (balance int64, ok bool, err error)
}
