package credit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/internal/domain/entity"
)

// fakeUserRepo 内存版用户仓储，模拟条件更新语义
type fakeUserRepo struct {
	user *entity.User

	// deductHook 在条件扣减前执行，用于模拟并发竞争
	deductHook func()
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (f *fakeUserRepo) ResetCredits(ctx context.Context, id string, allotment int64, resetAt, staleBefore time.Time) (bool, error) {
	if f.user == nil || f.user.ID != id {
		return false, nil
	}
	if !f.user.CreditsResetAt.Before(staleBefore) {
		return false, nil
	}
	f.user.Credits = allotment
	f.user.CreditsResetAt = resetAt
	return true, nil
}

func (f *fakeUserRepo) AddCredits(ctx context.Context, id string, amount int64) (int64, error) {
	if f.user == nil || f.user.ID != id {
		return 0, nil
	}
	f.user.Credits += amount
	return f.user.Credits, nil
}

func (f *fakeUserRepo) DeductCredits(ctx context.Context, id string, amount int64) (int64, bool, error) {
	if f.deductHook != nil {
		f.deductHook()
	}
	if f.user == nil || f.user.ID != id {
		return 0, false, nil
	}
	if f.user.Credits < amount {
		return f.user.Credits, false, nil
	}
	f.user.Credits -= amount
	return f.user.Credits, true, nil
}

func newTestLedger(user *entity.User, now time.Time) (*Ledger, *fakeUserRepo) {
	repo := &fakeUserRepo{user: user}
	l := NewLedger(repo)
	l.now = func() time.Time { return now }
	return l, repo
}

func TestTextCost(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{name: "空文本", text: "", want: 0},
		{name: "五字符恰好一分", text: "abcde", want: 1},
		{name: "六字符向上取整", text: "abcdef", want: 2},
		{name: "多字节字符按码点计", text: "你好世界啊", want: 1},
		{name: "十字符", text: "0123456789", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextCost(tt.text))
		})
	}
}

func TestBalanceResetOnNewDay(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{
		ID:             "u1",
		Credits:        120,
		CreditsResetAt: time.Date(2026, 3, 1, 23, 50, 0, 0, time.Local),
	}
	l, repo := newTestLedger(user, now)

	balance, err := l.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, DailyAllotment, balance)
	assert.Equal(t, now, repo.user.CreditsResetAt)
}

func TestBalanceNoResetSameDay(t *testing.T) {
	now := time.Date(2026, 3, 2, 21, 0, 0, 0, time.Local)
	user := &entity.User{
		ID:             "u1",
		Credits:        120,
		CreditsResetAt: time.Date(2026, 3, 2, 0, 30, 0, 0, time.Local),
	}
	l, _ := newTestLedger(user, now)

	balance, err := l.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)
}

func TestBalanceUnknownUser(t *testing.T) {
	l, _ := newTestLedger(nil, time.Now())

	balance, err := l.Balance(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestDeduct(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{ID: "u1", Credits: 100, CreditsResetAt: now}
	l, repo := newTestLedger(user, now)

	remaining, err := l.Deduct(context.Background(), "u1", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), remaining)
	assert.Equal(t, int64(70), repo.user.Credits)
}

func TestDeductInsufficient(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{ID: "u1", Credits: 10, CreditsResetAt: now}
	l, repo := newTestLedger(user, now)

	_, err := l.Deduct(context.Background(), "u1", 30)

	var ice *InsufficientCreditsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(30), ice.Need)
	assert.Equal(t, int64(10), ice.Have)
	// 余额不足时不产生任何扣减
	assert.Equal(t, int64(10), repo.user.Credits)
}

func TestDeductRaceFallsBackToInsufficient(t *testing.T) {
	// 预检通过后余额被并发请求抢扣，条件更新必须兜底
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{ID: "u1", Credits: 100, CreditsResetAt: now}
	l, repo := newTestLedger(user, now)
	repo.deductHook = func() {
		repo.user.Credits = 5
		repo.deductHook = nil
	}

	_, err := l.Deduct(context.Background(), "u1", 30)

	var ice *InsufficientCreditsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(5), repo.user.Credits)
}

func TestDeductZeroAndNegative(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{ID: "u1", Credits: 100, CreditsResetAt: now}
	l, _ := newTestLedger(user, now)

	remaining, err := l.Deduct(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), remaining)

	_, err = l.Deduct(context.Background(), "u1", -1)
	require.Error(t, err)
	var ice *InsufficientCreditsError
	assert.False(t, errors.As(err, &ice))
}

func TestDeductResetsBeforeCharging(t *testing.T) {
	// 昨天花光了额度，跨天后的扣减应先重置再执行
	now := time.Date(2026, 3, 2, 0, 5, 0, 0, time.Local)
	user := &entity.User{
		ID:             "u1",
		Credits:        0,
		CreditsResetAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.Local),
	}
	l, _ := newTestLedger(user, now)

	remaining, err := l.Deduct(context.Background(), "u1", 2000)
	require.NoError(t, err)
	assert.Equal(t, DailyAllotment-2000, remaining)
}

func TestRefund(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	user := &entity.User{ID: "u1", Credits: 100, CreditsResetAt: now}
	l, repo := newTestLedger(user, now)

	balance, err := l.Refund(context.Background(), "u1", ImageCost)
	require.NoError(t, err)
	assert.Equal(t, 100+ImageCost, balance)
	assert.Equal(t, 100+ImageCost, repo.user.Credits)

	// 非正数返还是空操作
	balance, err = l.Refund(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 100+ImageCost, balance)
}

func TestEnsureReserve(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	t.Run("余额充足", func(t *testing.T) {
		user := &entity.User{ID: "u1", Credits: MinReserve, CreditsResetAt: now}
		l, _ := newTestLedger(user, now)
		balance, err := l.EnsureReserve(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, MinReserve, balance)
	})

	t.Run("低于保留额", func(t *testing.T) {
		user := &entity.User{ID: "u1", Credits: MinReserve - 1, CreditsResetAt: now}
		l, _ := newTestLedger(user, now)
		_, err := l.EnsureReserve(context.Background(), "u1")
		var ice *InsufficientCreditsError
		require.ErrorAs(t, err, &ice)
		assert.Equal(t, MinReserve, ice.Need)
	})
}
