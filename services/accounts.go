package services

import (
	"context"
	"errors"
	"fmt"

	"gripinvest/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountLedger owns user balances. Every mutation runs inside a transaction
// supplied by the caller so it commits or rolls back with the rest of the unit
// of work.
type AccountLedger struct {
	DB *gorm.DB
}

func NewAccountLedger(db *gorm.DB) *AccountLedger {
	return &AccountLedger{DB: db}
}

// Debit decrements the balance of accountID by amount within tx and returns
// the new balance. The balance is re-read under a row lock, and the write is
// conditioned on the balance still covering amount, so no negative balance
// can be persisted even by racing requests.
func (l *AccountLedger) Debit(ctx context.Context, tx *gorm.DB, accountID string, amount models.Money) (models.Money, error) {
	if !amount.IsPositive() || !amount.WholeCents() {
		return models.Money{}, ErrInvalidAmount
	}
	user, err := l.lock(ctx, tx, accountID)
	if err != nil {
		return models.Money{}, err
	}
	if user.Balance.LessThan(amount.Decimal) {
		return models.Money{}, ErrInsufficientFunds
	}

	newBalance := user.Balance.Sub(amount)
	res := tx.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		Update("balance", newBalance)
	if res.Error != nil {
		return models.Money{}, fmt.Errorf("debit account %s: %w", accountID, res.Error)
	}
	if res.RowsAffected != 1 {
		return models.Money{}, ErrInsufficientFunds
	}
	return newBalance, nil
}

// Credit increments the balance of accountID by amount within tx.
func (l *AccountLedger) Credit(ctx context.Context, tx *gorm.DB, accountID string, amount models.Money) (models.Money, error) {
	if !amount.IsPositive() || !amount.WholeCents() {
		return models.Money{}, ErrInvalidAmount
	}
	user, err := l.lock(ctx, tx, accountID)
	if err != nil {
		return models.Money{}, err
	}

	newBalance := user.Balance.Add(amount)
	if err := tx.WithContext(ctx).Model(&models.User{}).Where("id = ?", accountID).Update("balance", newBalance).Error; err != nil {
		return models.Money{}, fmt.Errorf("credit account %s: %w", accountID, err)
	}
	return newBalance, nil
}

// Balance reads the current balance outside of any transaction.
func (l *AccountLedger) Balance(ctx context.Context, accountID string) (models.Money, error) {
	var user models.User
	if err := l.DB.WithContext(ctx).Select("id", "balance").Where("id = ?", accountID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Money{}, ErrAccountNotFound
		}
		return models.Money{}, err
	}
	return user.Balance, nil
}

func (l *AccountLedger) lock(ctx context.Context, tx *gorm.DB, accountID string) (*models.User, error) {
	var user models.User
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "balance").Where("id = ?", accountID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account %s: %w", accountID, err)
	}
	return &user, nil
}
