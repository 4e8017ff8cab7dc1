package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rating is computed per read and never stored
const titleSelectWithRating = "titles.*, (SELECT CAST(AVG(reviews.score) AS FLOAT) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows title listings. Zero values mean "no filter".
type TitleFilter struct {
	Name     string // case-insensitive substring
	Category string // category slug
	Genre    string // genre slug
	Year     int
}

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title, genreIDs []int64) error
	// Update saves scalar fields; a nil genreIDs leaves genre links untouched.
	Update(ctx context.Context, title *models.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter TitleFilter, page Page) ([]models.Title, int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) Create(ctx context.Context, title *models.Title, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return err
		}
		return linkGenres(tx, title.ID, genreIDs)
	})
	return translate("create title", err)
}

func (r *TitleRepo) Update(ctx context.Context, title *models.Title, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(title).Error; err != nil {
			return err
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Where("title_id = ?", title.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("unlink genres: %w", err)
		}
		return linkGenres(tx, title.ID, genreIDs)
	})
	return translate("update title", err)
}

func linkGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[int64]bool, len(genreIDs))
	for _, id := range genreIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	return nil
}

// Delete removes the title with its genre links, reviews and their comments.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete title", err)
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Select(titleSelectWithRating).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Where("titles.id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate("get title", err)
	}
	return &t, nil
}

func (r *TitleRepo) List(ctx context.Context, filter TitleFilter, page Page) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.filtered(r.db.WithContext(ctx).Model(&models.Title{}), filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count titles", err)
	}

	err := r.filtered(r.db.WithContext(ctx).Model(&models.Title{}), filter).
		Select(titleSelectWithRating).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Order("titles.id desc").
		Limit(page.limit()).
		Offset(page.offset()).
		Find(&list).Error
	if err != nil {
		return nil, 0, translate("list titles", err)
	}
	return list, total, nil
}

func (r *TitleRepo) filtered(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE LOWER(?)", "%"+f.Name+"%")
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (SELECT tg.title_id FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)", f.Genre)
	}
	return q
}

func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate("check title", err)
	}
	return count > 0, nil
}
