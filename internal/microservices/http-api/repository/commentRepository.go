package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, page Page) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate("create comment", r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

// Update writes the text only
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return translate("update comment", r.db.WithContext(ctx).Model(comment).Select("text").Updates(comment).Error)
}

// Delete a comment by id; ownership is decided by the caller
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return translate("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete comment", gorm.ErrRecordNotFound)
	}
	return nil
}

// GetByID retrieves a comment only if it belongs to the given review
func (r *commentRepository) GetByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND review_id = ?", commentID, reviewID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, translate("get comment", err)
	}
	return &comment, nil
}

// ListByReview retrieves all comments of a review, newest first, with pagination
func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page Page) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, translate("count comments", err)
	}

	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date desc").
		Order("id desc").
		Limit(page.limit()).
		Offset(page.offset()).
		Find(&comments).Error
	if err != nil {
		return nil, 0, translate("list comments", err)
	}
	return comments, total, nil
}
