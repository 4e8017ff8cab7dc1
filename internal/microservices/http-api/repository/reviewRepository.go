package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page Page) ([]models.Review, int64, error)
	ReviewExists(ctx context.Context, titleID int64, authorID string) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A second review for the same (title, author) pair is
// rejected by the unique index with ErrConstraintViolated, even when the
// caller's pre-check raced.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return translate("create review", err)
	}
	return nil
}

// Update writes text and score only; author, title and pub_date are immutable.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Model(review).Select("text", "score").Updates(review).Error
	return translate("update review", err)
}

// Delete removes the review and its comments.
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Review{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete review", err)
}

// GetByID retrieves a review only if it belongs to the given title
func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, translate("get review", err)
	}
	return &review, nil
}

// ListByTitle retrieves the reviews of a title, newest first, with pagination
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page Page) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, translate("count reviews", err)
	}

	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date desc").
		Order("id desc").
		Limit(page.limit()).
		Offset(page.offset()).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, translate("list reviews", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) ReviewExists(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate("check review", err)
	}
	return count > 0, nil
}
