package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/shared"
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
)

type TitleService interface {
	List(ctx context.Context, caller permission.Identity, filter repository.TitleFilter, page repository.Page) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, caller permission.Identity, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, caller permission.Identity, req dto.TitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, caller permission.Identity, id int64, req dto.TitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, caller permission.Identity, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	perm       *permission.Evaluator
	logger     *logrus.Logger
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
	perm *permission.Evaluator,
	logger *logrus.Logger,
) TitleService {
	return &titleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		perm:       perm,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, caller permission.Identity, filter repository.TitleFilter, page repository.Page) (*dto.Paginated[dto.TitleResponse], error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindTitle}); err != nil {
		return nil, err
	}
	titles, total, err := s.titles.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(titles, dto.TitleFromModel), total, page), nil
}

func (s *titleService) Get(ctx context.Context, caller permission.Identity, id int64) (*dto.TitleResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindTitle}); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *titleService) Create(ctx context.Context, caller permission.Identity, req dto.TitleRequest) (*dto.TitleResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPost, Kind: permission.KindTitle}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return nil, validation.Required("name")
	}
	if req.Year == nil {
		return nil, validation.Required("year")
	}

	title := &models.Title{}
	genreIDs, err := s.apply(ctx, title, req)
	if err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, title, genreIDs); err != nil {
		return nil, err
	}
	return s.load(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, caller permission.Identity, id int64, req dto.TitleRequest) (*dto.TitleResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPatch, Kind: permission.KindTitle}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("title", err)
	}

	genreIDs, err := s.apply(ctx, title, req)
	if err != nil {
		return nil, err
	}
	if err := s.titles.Update(ctx, title, genreIDs); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, caller permission.Identity, id int64) error {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodDelete, Kind: permission.KindTitle}); err != nil {
		return err
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return storeErr("title", err)
	}
	s.logger.WithFields(logrus.Fields{"title_id": id, "by": caller.UserID}).Info("title deleted")
	return nil
}

// apply validates the present fields onto title and resolves genre slugs.
// The returned ids are nil when the payload leaves genres untouched.
func (s *titleService) apply(ctx context.Context, title *models.Title, req dto.TitleRequest) ([]int64, error) {
	if req.Name != nil {
		if err := validation.Name("name", *req.Name, validation.NameMaxLen); err != nil {
			return nil, err
		}
		title.Name = *req.Name
	}
	if req.Year != nil {
		// evaluated per write so the bound moves with the calendar
		if err := validation.Year(*req.Year, s.now()); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		title.Category = nil
		if *req.Category == "" {
			title.CategoryID = nil
		} else {
			category, err := s.categories.FindBySlug(ctx, *req.Category)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, shared.NewValidationError("category", "unknown category %q", *req.Category)
			}
			if err != nil {
				return nil, err
			}
			title.CategoryID = &category.ID
		}
	}

	if req.Genre == nil {
		return nil, nil
	}
	genres, err := s.genres.FindBySlugs(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]int64, len(genres))
	for _, g := range genres {
		bySlug[g.Slug] = g.ID
	}
	ids := make([]int64, 0, len(req.Genre))
	for _, slug := range req.Genre {
		id, ok := bySlug[slug]
		if !ok {
			return nil, shared.NewValidationError("genre", "unknown genre %q", slug)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *titleService) load(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("title", err)
	}
	resp := dto.TitleFromModel(title)
	return &resp, nil
}
