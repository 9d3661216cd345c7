package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewd/internal/domain/review"
	"reviewd/internal/errs"
	"reviewd/internal/infrastructure/persistence/sqlite/model"
	"reviewd/internal/ports"
)

type ReviewRepository struct {
	db *gorm.DB
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *ReviewRepository) Create(ctx context.Context, rev review.Review) (review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return review.Review{}, err
	}

	encoded, err := encodeResult(rev.CodeReview)
	if err != nil {
		return review.Review{}, errs.Wrap(err, "encode code review")
	}

	row := model.Review{
		ReviewID:       rev.ID,
		UserID:         rev.UserID,
		Language:       review.NormalizeLanguage(rev.Language),
		Status:         string(rev.Status),
		CodeSubmission: rev.CodeSubmission,
		CodeReview:     encoded,
		CreatedAt:      formatTime(rev.CreatedAt),
		UpdatedAt:      formatTime(rev.UpdatedAt),
	}
	if row.ReviewID == "" {
		row.ReviewID = uuid.NewString()
	}

	if err := db.Create(&row).Error; err != nil {
		return review.Review{}, errs.Wrap(err, "insert review")
	}
	return mapReview(row), nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return review.Review{}, err
	}

	var row model.Review
	if err := db.Where("review_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review.Review{}, ports.ErrReviewNotFound
		}
		return review.Review{}, errs.Wrap(err, "query review by id")
	}
	return mapReview(row), nil
}

func (r *ReviewRepository) Update(ctx context.Context, rev review.Review) (review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return review.Review{}, err
	}

	encoded, err := encodeResult(rev.CodeReview)
	if err != nil {
		return review.Review{}, errs.Wrap(err, "encode code review")
	}

	updates := map[string]any{
		"user_id":         rev.UserID,
		"language":        review.NormalizeLanguage(rev.Language),
		"status":          string(rev.Status),
		"code_submission": rev.CodeSubmission,
		"code_review":     encoded,
		"updated_at":      formatTime(rev.UpdatedAt),
	}

	result := db.Model(&model.Review{}).Where("review_id = ?", rev.ID).Updates(updates)
	if result.Error != nil {
		return review.Review{}, errs.Wrap(result.Error, "update review")
	}
	if result.RowsAffected == 0 {
		return review.Review{}, ports.ErrReviewNotFound
	}

	return r.FindByID(ctx, rev.ID)
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Where("review_id = ?", id).Delete(&model.Review{})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "delete review")
	}
	return result.RowsAffected > 0, nil
}

func (r *ReviewRepository) FindByUser(ctx context.Context, userID string) ([]review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Review
	if err := db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query reviews by user")
	}
	return mapReviews(rows), nil
}

func (r *ReviewRepository) FindByStatus(ctx context.Context, status review.Status) ([]review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Review
	if err := db.
		Where("status = ?", string(status)).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query reviews by status")
	}
	return mapReviews(rows), nil
}

func (r *ReviewRepository) FindByLanguage(ctx context.Context, language string) ([]review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Review
	if err := db.
		Where("language = ?", review.NormalizeLanguage(language)).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query reviews by language")
	}
	return mapReviews(rows), nil
}

func (r *ReviewRepository) FindByUserWithFilters(ctx context.Context, userID string, filter ports.ReviewFilter) ([]review.Review, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Review{}).Where("user_id = ?", userID)
	if filter.Language != "" {
		query = query.Where("language = ?", review.NormalizeLanguage(filter.Language))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Score != 0 {
		// Reaches into the embedded document; reviews without a code_review
		// never match a score filter.
		query = query.Where("json_extract(code_review, '$.overall_score') = ?", filter.Score)
	}

	var rows []model.Review
	if err := query.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query reviews with filters")
	}
	return mapReviews(rows), nil
}

func mapReviews(rows []model.Review) []review.Review {
	items := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapReview(row))
	}
	return items
}
