package repository

import (
	"context"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page Page) ([]models.User, int64, error)
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	SetConfirmationCode(ctx context.Context, id, codeHash string) error
	MarkConfirmed(ctx context.Context, id string, at time.Time) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate("update user", r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return translate("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete user", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on miss so a zero-value user is never mistaken for a found one
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate("find user by username", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate("find user by id", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

// List returns users ordered by username, optionally filtered by a username substring.
func (r *userRepository) List(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("LOWER(username) LIKE LOWER(?)", "%"+search+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}
	if err := q.Order("username asc").Limit(page.limit()).Offset(page.offset()).Find(&users).Error; err != nil {
		return nil, 0, translate("list users", err)
	}
	return users, total, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

func (r *userRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *userRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate("check user "+column, err)
	}
	return count > 0, nil
}

// SetConfirmationCode overwrites the single active code hash.
func (r *userRepository) SetConfirmationCode(ctx context.Context, id, codeHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("confirmation_code_hash", codeHash)
	if result.Error != nil {
		return translate("set confirmation code", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("set confirmation code", gorm.ErrRecordNotFound)
	}
	return nil
}

// MarkConfirmed records the first successful code exchange; later calls keep the original time.
func (r *userRepository) MarkConfirmed(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND confirmed_at IS NULL", id).
		Update("confirmed_at", at).Error
	return translate("mark user confirmed", err)
}
