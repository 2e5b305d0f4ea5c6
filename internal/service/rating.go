package service

import (
	"context"
	"fmt"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// SubmitRating stores the single rating of a completed contract.
func (e *Engine) SubmitRating(ctx context.Context, caller model.Principal, contractID uint64, score int, comment string) error {
	return e.run(ctx, "submit-rating", caller, contractID, func(tx *repository.Store) error {
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if contract.Status != model.ContractStatusCompleted {
			return fmt.Errorf("%w: contract %d is %s", ErrInvalidStatus, contractID, contract.Status)
		}
		if score < MinRatingScore || score > MaxRatingScore {
			return fmt.Errorf("%w: score %d outside %d..%d", ErrInvalidRating, score, MinRatingScore, MaxRatingScore)
		}
		if err := validText("comment", comment, maxCommentLen, false); err != nil {
			return err
		}
		exists, err := tx.Ratings.Exists(ctx, contractID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: contract %d", ErrDuplicateRating, contractID)
		}
		return tx.Ratings.Create(ctx, &model.Rating{
			ContractID: contractID,
			Rater:      caller.ID,
			Score:      uint8(score),
			Comment:    comment,
			CreatedAt:  e.now(),
		})
	})
}
