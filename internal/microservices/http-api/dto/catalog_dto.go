package dto

import "yamdb/internal/microservices/http-api/models"

// SlugRequest is shared by categories and genres. On PATCH nil fields are kept.
type SlugRequest struct {
	Deferred

	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// SlugResponse is the public view of a category or genre
type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c *models.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func GenreFromModel(g *models.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}
