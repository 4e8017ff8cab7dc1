package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// GET /titles?name=&category=&genre=&year=&page=&page_size=
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.TitleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := repository.TitleFilter{Name: q.Name, Category: q.Category, Genre: q.Genre, Year: q.Year}
	resp, err := h.titleService.List(c.Request.Context(), middleware.IdentityFrom(c), filter, q.PageQuery.Normalize())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}

	resp, err := h.titleService.Get(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.TitleRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.titleService.Create(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.TitleRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.titleService.Update(c.Request.Context(), middleware.IdentityFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
