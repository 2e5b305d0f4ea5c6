package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

const settingsRowID = 1

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Ensure creates the settings row with the supplied fee rate when it does not
// exist yet and returns the stored row.
func (r *SettingsRepository) Ensure(ctx context.Context, feeRate uint32) (*model.PlatformSettings, error) {
	settings, err := r.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	settings = &model.PlatformSettings{
		ID:        settingsRowID,
		FeeRate:   feeRate,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *SettingsRepository) Get(ctx context.Context) (*model.PlatformSettings, error) {
	var settings model.PlatformSettings
	if err := r.db.WithContext(ctx).First(&settings, "id = ?", settingsRowID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) SetFeeRate(ctx context.Context, rate uint32, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PlatformSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]interface{}{"fee_rate": rate, "updated_at": at}).Error
}

// NextContractID advances the contract-id sequence and returns the new value.
func (r *SettingsRepository) NextContractID(ctx context.Context) (uint64, error) {
	var next uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var settings model.PlatformSettings
		if err := tx.First(&settings, "id = ?", settingsRowID).Error; err != nil {
			return err
		}
		next = settings.LastContractID + 1
		return tx.Model(&model.PlatformSettings{}).
			Where("id = ?", settingsRowID).
			Update("last_contract_id", next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
