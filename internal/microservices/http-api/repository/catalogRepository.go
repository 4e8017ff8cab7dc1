package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// Slugged is a catalog entity addressed by a unique slug.
type Slugged interface {
	models.Category | models.Genre
}

// SluggedRepository is shared by categories and genres: both are a name plus a
// unique slug and are looked up by slug.
type SluggedRepository[T Slugged] interface {
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, slug string) error
	FindBySlug(ctx context.Context, slug string) (*T, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
	List(ctx context.Context, search string, page Page) ([]T, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type (
	CategoryRepository = SluggedRepository[models.Category]
	GenreRepository    = SluggedRepository[models.Genre]
)

type sluggedRepository[T Slugged] struct {
	db   *gorm.DB
	name string
	// detach runs inside the delete transaction before the row goes away
	detach func(tx *gorm.DB, id int64) error
}

// NewCategoryRepository deletes categories by nulling titles.category_id first.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &sluggedRepository[models.Category]{
		db:   db,
		name: "category",
		detach: func(tx *gorm.DB, id int64) error {
			return tx.Model(&models.Title{}).Where("category_id = ?", id).Update("category_id", nil).Error
		},
	}
}

// NewGenreRepository deletes genres by dropping their title links first.
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &sluggedRepository[models.Genre]{
		db:   db,
		name: "genre",
		detach: func(tx *gorm.DB, id int64) error {
			return tx.Where("genre_id = ?", id).Delete(&models.TitleGenre{}).Error
		},
	}
}

func (r *sluggedRepository[T]) Create(ctx context.Context, item *T) error {
	return translate("create "+r.name, r.db.WithContext(ctx).Create(item).Error)
}

func (r *sluggedRepository[T]) Update(ctx context.Context, item *T) error {
	return translate("update "+r.name, r.db.WithContext(ctx).Save(item).Error)
}

func (r *sluggedRepository[T]) Delete(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ ID int64 }
		if err := tx.Model(new(T)).Select("id").Where("slug = ?", slug).Take(&row).Error; err != nil {
			return err
		}
		if err := r.detach(tx, row.ID); err != nil {
			return fmt.Errorf("detach titles: %w", err)
		}
		return tx.Where("id = ?", row.ID).Delete(new(T)).Error
	})
	return translate("delete "+r.name, err)
}

func (r *sluggedRepository[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, translate("find "+r.name, err)
	}
	return &item, nil
}

func (r *sluggedRepository[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var list []T
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, translate("find "+r.name+" by slugs", err)
	}
	return list, nil
}

// List orders by name; search matches the name exactly.
func (r *sluggedRepository[T]) List(ctx context.Context, search string, page Page) ([]T, int64, error) {
	var list []T
	var total int64

	q := r.db.WithContext(ctx).Model(new(T))
	if search != "" {
		q = q.Where("name = ?", search)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count "+r.name, err)
	}
	if err := q.Order("name asc").Order("id asc").Limit(page.limit()).Offset(page.offset()).Find(&list).Error; err != nil {
		return nil, 0, translate("list "+r.name, err)
	}
	return list, total, nil
}

func (r *sluggedRepository[T]) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate("check "+r.name+" slug", err)
	}
	return count > 0, nil
}
