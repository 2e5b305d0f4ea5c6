package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/metrics"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

// MaxAmount is the largest amount or balance the store can hold: both SQL
// drivers persist integers as signed 64-bit values.
const MaxAmount uint64 = math.MaxInt64

const (
	maxIdentityLen             = 128
	maxTitleLen                = 100
	maxDescriptionLen          = 500
	maxMilestoneDescriptionLen = 200
	maxCommentLen              = 200
	maxReasonLen               = 500
)

type EngineOptions struct {
	// Owner is the platform owner: it sets the fee, resolves disputes and
	// receives fees.
	Owner string
	// EscrowVault is the identity that holds escrowed funds between deposit
	// and release.
	EscrowVault string
	// FeeRate seeds the fee configuration when none is stored yet.
	FeeRate uint32
	Metrics *metrics.EngineMetrics
	Now     func() time.Time
}

// Engine is the single authoritative state container for contracts,
// milestones, disputes, ratings and the fee configuration. Mutations are
// serialized and each one commits in a single database transaction, so a
// failed precondition or transfer leaves no trace.
type Engine struct {
	mu      sync.RWMutex
	store   *repository.Store
	owner   string
	vault   string
	metrics *metrics.EngineMetrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewEngine(ctx context.Context, store *repository.Store, log zerolog.Logger, opts EngineOptions) (*Engine, error) {
	if err := validIdentity("owner", opts.Owner); err != nil {
		return nil, err
	}
	if err := validIdentity("escrow vault", opts.EscrowVault); err != nil {
		return nil, err
	}
	if opts.Owner == opts.EscrowVault {
		return nil, fmt.Errorf("%w: owner and escrow vault must differ", ErrInvalidInput)
	}
	if opts.FeeRate > MaxFeeRate {
		return nil, fmt.Errorf("%w: initial fee rate %d", ErrFeeExceedsMaximum, opts.FeeRate)
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if _, err := store.Settings.Ensure(ctx, opts.FeeRate); err != nil {
		return nil, fmt.Errorf("load platform settings: %w", err)
	}
	return &Engine{
		store:   store,
		owner:   opts.Owner,
		vault:   opts.EscrowVault,
		metrics: opts.Metrics,
		log:     log.With().Str("component", "engine").Logger(),
		now:     now,
	}, nil
}

func (e *Engine) Owner() string { return e.owner }

func (e *Engine) EscrowVault() string { return e.vault }

// run executes one mutating operation: it holds the writer lock, runs fn in a
// transaction and records the outcome.
func (e *Engine) run(ctx context.Context, op string, caller model.Principal, contractID uint64, fn func(tx *repository.Store) error) error {
	return e.runOn(ctx, op, caller, contractID, nil, fn)
}

// runMilestone is run for operations addressing a single milestone.
func (e *Engine) runMilestone(ctx context.Context, op string, caller model.Principal, contractID, milestoneID uint64, fn func(tx *repository.Store) error) error {
	return e.runOn(ctx, op, caller, contractID, &milestoneID, fn)
}

func (e *Engine) runOn(ctx context.Context, op string, caller model.Principal, contractID uint64, milestoneID *uint64, fn func(tx *repository.Store) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if caller.IsZero() {
		err = ErrMissingCaller
	} else {
		err = e.store.Transaction(ctx, fn)
	}
	e.observe(op, caller, contractID, milestoneID, err)
	return err
}

func (e *Engine) observe(op string, caller model.Principal, contractID uint64, milestoneID *uint64, err error) {
	code := ErrorCode(err)
	e.metrics.ObserveOperation(op, code)

	var event *zerolog.Event
	switch code {
	case "ok":
		event = e.log.Info()
	case "internal":
		event = e.log.Error().Err(err)
	default:
		event = e.log.Debug().Str("code", code).Str("reason", err.Error())
	}
	event = event.Str("op", op).Str("caller", caller.ID)
	if contractID != 0 {
		event = event.Uint64("contract_id", contractID)
	}
	if milestoneID != nil {
		event = event.Uint64("milestone_id", *milestoneID)
	}
	event.Msg("engine operation")
}

// loadContract fetches a contract, translating absence into ErrContractNotFound.
func loadContract(ctx context.Context, tx *repository.Store, id uint64) (*model.Contract, error) {
	contract, err := tx.Contracts.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrContractNotFound, id)
		}
		return nil, err
	}
	return contract, nil
}

func requireActive(contract *model.Contract) error {
	if contract.Status != model.ContractStatusActive {
		return fmt.Errorf("%w: contract %d is %s", ErrInvalidStatus, contract.ID, contract.Status)
	}
	return nil
}

// transfer moves funds through the ledger, surfacing a short balance as
// ErrInsufficientFunds.
func (e *Engine) transfer(ctx context.Context, tx *repository.Store, entry model.LedgerEntry) error {
	entry.CreatedAt = e.now()
	if err := tx.Accounts.Transfer(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		}
		if errors.Is(err, repository.ErrBalanceOverflow) {
			return fmt.Errorf("%w: %w", ErrAmountTooLarge, err)
		}
		return err
	}
	return nil
}

func validAmount(amount uint64) error {
	if amount == 0 {
		return ErrInsufficientAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: %d, maximum is %d", ErrAmountTooLarge, amount, MaxAmount)
	}
	return nil
}

func validIdentity(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(id) > maxIdentityLen {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidInput, field, maxIdentityLen)
	}
	return nil
}

func validText(field, value string, max int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s longer than %d characters", ErrInvalidInput, field, max)
	}
	return nil
}

func uint64Ptr(v uint64) *uint64 { return &v }
