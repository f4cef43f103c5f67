package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gripinvest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func countInvestments(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Investment{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCreateInvestment_Success(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00", withMax("100000.00"))

	ledger := NewInvestmentLedger(db, nil)
	ledger.Now = fixedClock(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))

	inv, err := ledger.CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "2000.00"))
	require.NoError(t, err)

	assert.Equal(t, models.InvestmentActive, inv.Status)
	assert.Equal(t, "2000.00", inv.Amount.String())
	assert.Equal(t, "2160.00", inv.ExpectedReturn.String())
	assert.Equal(t, "2025-03-15", inv.MaturityDate.String())
	assert.Equal(t, "48000.00", balanceOf(t, db, u.ID).String())

	var stored models.Investment
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, u.ID, stored.UserID)
	assert.Equal(t, "2160.00", stored.ExpectedReturn.String())
	assert.Equal(t, "2025-03-15", stored.MaturityDate.String())
}

func TestCreateInvestment_InsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00")

	_, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "100000"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))
	assert.Equal(t, "50000.00", balanceOf(t, db, u.ID).String())
	assert.Zero(t, countInvestments(t, db, u.ID))
}

func TestCreateInvestment_BelowMinimum(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00")

	_, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "500"))
	require.ErrorIs(t, err, ErrAmountOutOfBounds)

	var bounds *AmountOutOfBoundsError
	require.True(t, errors.As(err, &bounds))
	assert.Equal(t, BoundMin, bounds.Bound)
	assert.Equal(t, "Investment amount must be at least 1000.00", err.Error())
	assert.Equal(t, "50000.00", balanceOf(t, db, u.ID).String())
	assert.Zero(t, countInvestments(t, db, u.ID))
}

func TestCreateInvestment_AboveMaximum(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00", withMax("20000.00"))

	_, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "20000.01"))
	require.ErrorIs(t, err, ErrAmountOutOfBounds)
	assert.Equal(t, "Investment amount cannot exceed 20000.00", err.Error())
}

func TestCreateInvestment_BoundsAreInclusive(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "6.00", 36, "1000.00", withMax("20000.00"))
	ledger := NewInvestmentLedger(db, nil)

	_, err := ledger.CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "1000.00"))
	require.NoError(t, err)
	_, err = ledger.CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "20000.00"))
	require.NoError(t, err)
	assert.Equal(t, "29000.00", balanceOf(t, db, u.ID).String())
}

func TestCreateInvestment_InvalidAmount(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "0")

	for _, amt := range []string{"0", "-10"} {
		_, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, amt))
		assert.ErrorIs(t, err, ErrInvalidAmount, amt)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	}
}

func TestCreateInvestment_NotFound(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00")
	ledger := NewInvestmentLedger(db, nil)

	_, err := ledger.CreateInvestment(context.Background(), u.ID, "no-such-product", mustMoney(t, "2000"))
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = ledger.CreateInvestment(context.Background(), "no-such-user", p.ID, mustMoney(t, "2000"))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateInvestment_RollsBackWhenInsertFails(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00")

	boom := errors.New("disk full")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_investment", func(tx *gorm.DB) {
		if tx.Statement.Table == "investments" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "2000"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "50000.00", balanceOf(t, db, u.ID).String(), "debit must roll back with the failed insert")
	assert.Zero(t, countInvestments(t, db, u.ID))
}

func TestCreateInvestment_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "5000.00")
	p := createProduct(t, db, "8.00", 12, "1000.00")
	ledger := NewInvestmentLedger(db, nil)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "1000"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, ErrInsufficientFunds) {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, failed)
	assert.True(t, balanceOf(t, db, u.ID).IsZero())
	assert.EqualValues(t, 5, countInvestments(t, db, u.ID))
}

func TestExpectedReturn(t *testing.T) {
	tests := []struct {
		amount, yield string
		tenure        int
		want          string
	}{
		{"2000.00", "8.00", 12, "2160.00"},
		{"5000.00", "12.50", 60, "8125.00"},
		{"1000.00", "0", 24, "1000.00"},
		{"1234.56", "7.25", 7, "1286.77"},
		{"500.00", "6.00", 1, "502.50"},
	}
	for _, tt := range tests {
		got := ExpectedReturn(mustMoney(t, tt.amount), mustMoney(t, tt.yield), tt.tenure)
		assert.Equal(t, tt.want, got.String(), "%s @ %s%% for %d months", tt.amount, tt.yield, tt.tenure)
	}
}

func TestCreateInvestment_MaturityClampsToMonthEnd(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	p := createProduct(t, db, "6.00", 1, "100.00")

	ledger := NewInvestmentLedger(db, nil)
	ledger.Now = fixedClock(time.Date(2023, 1, 31, 23, 0, 0, 0, time.UTC))

	inv, err := ledger.CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, "100"))
	require.NoError(t, err)
	assert.Equal(t, "2023-02-28", inv.MaturityDate.String())
}

func TestCreateInvestment_FractionalCents(t *testing.T) {
	tests := []struct {
		amount string
		min    string
		ok     bool
	}{
		{"1000.005", "1000.00", false},
		{"0.001", "0", false},
		{"999.999", "0", false},
		{"1000.500", "1000.00", true},
		{"0.01", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			db := newTestDB(t)
			u := createUser(t, db, "50000.00")
			p := createProduct(t, db, "8.00", 12, tt.min)

			inv, err := NewInvestmentLedger(db, nil).CreateInvestment(context.Background(), u.ID, p.ID, mustMoney(t, tt.amount))
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				assert.Equal(t, KindInvalidInput, KindOf(err))
				assert.Equal(t, "50000.00", balanceOf(t, db, u.ID).String())
				assert.Zero(t, countInvestments(t, db, u.ID))
				return
			}
			require.NoError(t, err)
			debited := mustMoney(t, "50000.00").Sub(balanceOf(t, db, u.ID))
			assert.True(t, debited.Equal(inv.Amount.Decimal), "debited %s, recorded %s", debited, inv.Amount)
			assert.True(t, inv.Amount.IsPositive())
		})
	}
}
