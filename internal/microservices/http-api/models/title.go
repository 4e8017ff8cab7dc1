package models

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:256;not null;index"`
	Year        int    `json:"year" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text"`
	CategoryID  *int64 `json:"-" gorm:"index"`

	// derived: mean review score, filled by queries that select it, never stored
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// associations
	Category *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}

// TitleGenre is the explicit join model; the composite key keeps (title, genre) unique.
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey;autoIncrement:false"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;autoIncrement:false"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
