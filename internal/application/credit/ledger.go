// Package credit 实现每日重置的积分账本
package credit

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/pkg/logger"
)

const (
	// DailyAllotment 每日积分额度
	DailyAllotment int64 = 50000

	// CostPerChar 文本生成每字符积分单价
	CostPerChar = 0.2

	// MinReserve 发起生成前要求的最低余额，避免长流中途断费
	MinReserve int64 = 5000

	// ImageCost 单张配图的固定积分价格
	ImageCost int64 = 1000
)

// InsufficientCreditsError 余额不足。与存储、参数等普通错误区分开，
// 调用方据此返回 402 而非 500。
type InsufficientCreditsError struct {
	UserID string
	Need   int64
	Have   int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("积分不足: 用户 %s 需要 %d, 剩余 %d", e.UserID, e.Need, e.Have)
}

// TextCost 按字符数（按 Unicode 码点计）计算文本生成费用，向上取整。
// 空文本费用为零。
func TextCost(text string) int64 {
	if text == "" {
		return 0
	}
	return int64(math.Ceil(float64(utf8.RuneCountInString(text)) * CostPerChar))
}

// Ledger 积分账本。余额存储在用户行上，每日按本地日历日懒重置：
// 没有定时任务，首次访问时发现上次重置早于今天零点就把余额恢复为
// DailyAllotment。重置与扣减都通过仓储层的条件更新完成，并发请求
// 不会双重重置或把余额扣成负数。
type Ledger struct {
	users repository.UserRepository
	now   func() time.Time
}

// NewLedger 创建积分账本
func NewLedger(users repository.UserRepository) *Ledger {
	return &Ledger{
		users: users,
		now:   time.Now,
	}
}

// Balance 返回用户当前可用余额，必要时先执行每日重置。
// 用户不存在时视为零余额。
func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return 0, nil
	}

	now := l.now()
	today := startOfDay(now)
	if !user.CreditsResetAt.Before(today) {
		return user.Credits, nil
	}

	reset, err := l.users.ResetCredits(ctx, userID, DailyAllotment, now, today)
	if err != nil {
		return 0, fmt.Errorf("重置积分失败: %w", err)
	}
	if reset {
		logger.Info(ctx, "每日积分已重置",
			"user_id", userID,
			"allotment", DailyAllotment,
		)
		return DailyAllotment, nil
	}

	// 条件更新未命中说明并发请求已完成重置，重读余额
	user, err = l.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return 0, nil
	}
	return user.Credits, nil
}

// EnsureReserve 校验余额达到发起生成所需的最低保留额。
// 不足时返回 *InsufficientCreditsError。
func (l *Ledger) EnsureReserve(ctx context.Context, userID string) (int64, error) {
	balance, err := l.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance < MinReserve {
		return balance, &InsufficientCreditsError{UserID: userID, Need: MinReserve, Have: balance}
	}
	return balance, nil
}

// Deduct 原子扣减 amount 并返回扣减后的余额。
// 先做每日重置，再依赖仓储层的条件更新兜底：预检通过后被并发请求
// 抢先扣减时，条件更新失败并归类为余额不足。
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("非法扣减数额: %d", amount)
	}

	balance, err := l.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return balance, nil
	}
	if balance < amount {
		return balance, &InsufficientCreditsError{UserID: userID, Need: amount, Have: balance}
	}

	remaining, ok, err := l.users.DeductCredits(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("扣减积分失败: %w", err)
	}
	if !ok {
		return remaining, &InsufficientCreditsError{UserID: userID, Need: amount, Have: remaining}
	}
	return remaining, nil
}

// Refund 返还积分并返回最新余额，用于预扣后生成失败的场景
func (l *Ledger) Refund(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return l.Balance(ctx, userID)
	}
	balance, err := l.users.AddCredits(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("返还积分失败: %w", err)
	}
	return balance, nil
}

// startOfDay 返回 t 所在本地日历日的零点
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
