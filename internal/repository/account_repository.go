package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

// MaxBalance is the largest balance the SQL drivers can persist.
const MaxBalance uint64 = math.MaxInt64

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// AccountRepository holds identity balances and the ledger of every movement
// between them. It is the funds-transfer primitive used by the engine.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Balance returns the balance of an identity; unknown identities hold 0.
func (r *AccountRepository) Balance(ctx context.Context, id string) (uint64, error) {
	account, err := r.get(ctx, id)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Credit adds funds that originate outside the ledger.
func (r *AccountRepository) Credit(ctx context.Context, entry model.LedgerEntry) error {
	account, err := r.get(ctx, entry.To)
	if err != nil {
		return err
	}
	if !fits(account.Balance, entry.Amount) {
		return ErrBalanceOverflow
	}
	account.Balance += entry.Amount
	if err := r.put(ctx, account, entry.CreatedAt); err != nil {
		return err
	}
	return r.record(ctx, entry)
}

// Transfer moves entry.Amount from entry.From to entry.To and records the
// entry. A zero amount is a no-op.
func (r *AccountRepository) Transfer(ctx context.Context, entry model.LedgerEntry) error {
	if entry.Amount == 0 {
		return nil
	}
	if entry.From == entry.To {
		return fmt.Errorf("transfer to self: %s", entry.From)
	}
	from, err := r.get(ctx, entry.From)
	if err != nil {
		return err
	}
	if from.Balance < entry.Amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, entry.From, from.Balance, entry.Amount)
	}
	to, err := r.get(ctx, entry.To)
	if err != nil {
		return err
	}
	if !fits(to.Balance, entry.Amount) {
		return ErrBalanceOverflow
	}
	from.Balance -= entry.Amount
	to.Balance += entry.Amount
	if err := r.put(ctx, from, entry.CreatedAt); err != nil {
		return err
	}
	if err := r.put(ctx, to, entry.CreatedAt); err != nil {
		return err
	}
	return r.record(ctx, entry)
}

// Ledger lists the entries of a contract in the order they were written.
func (r *AccountRepository) Ledger(ctx context.Context, contractID uint64) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("seq ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func fits(balance, amount uint64) bool {
	return amount <= MaxBalance && balance <= MaxBalance-amount
}

func (r *AccountRepository) get(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Account{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) put(ctx context.Context, account *model.Account, at time.Time) error {
	account.UpdatedAt = at
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *AccountRepository) record(ctx context.Context, entry model.LedgerEntry) error {
	var last uint64
	err := r.db.WithContext(ctx).
		Model(&model.LedgerEntry{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.Seq = last + 1
	return r.db.WithContext(ctx).Create(&entry).Error
}
