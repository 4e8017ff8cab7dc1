package dto

import "yamdb/internal/microservices/http-api/models"

// TitleRequest is the write payload; genre and category are referenced by slug.
// On PATCH a nil field is left untouched, and an explicit empty genre list clears genres.
type TitleRequest struct {
	Deferred

	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// TitleQuery is bound from the list filters
type TitleQuery struct {
	PageQuery
	Name     string `form:"name"`
	Category string `form:"category"`
	Genre    string `form:"genre"`
	Year     int    `form:"year"`
}

type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Genre       []SlugResponse `json:"genre"`
	Category    *SlugResponse  `json:"category"`
}

func TitleFromModel(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       MapSlice(t.Genres, GenreFromModel),
	}
	if t.Category != nil {
		c := CategoryFromModel(t.Category)
		resp.Category = &c
	}
	return resp
}
