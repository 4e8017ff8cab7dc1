package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves both /categories and /genres.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GET ?search=<exact name>&page=&page_size=
func (h *CatalogHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.catalogService.List(c.Request.Context(), middleware.IdentityFrom(c), c.Query("search"), q.Normalize())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.SlugRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.catalogService.Create(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var req dto.SlugRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.catalogService.Update(c.Request.Context(), middleware.IdentityFrom(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalogService.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
