package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// Get returns the rating of a contract or gorm.ErrRecordNotFound.
func (r *RatingRepository) Get(ctx context.Context, contractID uint64) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.WithContext(ctx).First(&rating, "contract_id = ?", contractID).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepository) Exists(ctx context.Context, contractID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
