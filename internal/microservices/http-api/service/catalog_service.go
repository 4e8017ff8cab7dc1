package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/shared"
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
)

// CatalogService manages one slug-addressed kind: categories or genres.
type CatalogService interface {
	List(ctx context.Context, caller permission.Identity, search string, page repository.Page) (*dto.Paginated[dto.SlugResponse], error)
	Create(ctx context.Context, caller permission.Identity, req dto.SlugRequest) (*dto.SlugResponse, error)
	Update(ctx context.Context, caller permission.Identity, slug string, req dto.SlugRequest) (*dto.SlugResponse, error)
	Delete(ctx context.Context, caller permission.Identity, slug string) error
}

// slugFields gives the generic service access to the concrete model.
type slugFields[T repository.Slugged] struct {
	kind   permission.Kind
	entity string
	fields func(*T) (id *int64, name, slug *string)
	toDTO  func(*T) dto.SlugResponse
}

type catalogService[T repository.Slugged] struct {
	repo   repository.SluggedRepository[T]
	perm   *permission.Evaluator
	logger *logrus.Logger
	slugFields[T]
}

func NewCategoryService(repo repository.CategoryRepository, perm *permission.Evaluator, logger *logrus.Logger) CatalogService {
	return &catalogService[models.Category]{
		repo:   repo,
		perm:   perm,
		logger: logger,
		slugFields: slugFields[models.Category]{
			kind:   permission.KindCategory,
			entity: "category",
			fields: func(c *models.Category) (*int64, *string, *string) { return &c.ID, &c.Name, &c.Slug },
			toDTO:  dto.CategoryFromModel,
		},
	}
}

func NewGenreService(repo repository.GenreRepository, perm *permission.Evaluator, logger *logrus.Logger) CatalogService {
	return &catalogService[models.Genre]{
		repo:   repo,
		perm:   perm,
		logger: logger,
		slugFields: slugFields[models.Genre]{
			kind:   permission.KindGenre,
			entity: "genre",
			fields: func(g *models.Genre) (*int64, *string, *string) { return &g.ID, &g.Name, &g.Slug },
			toDTO:  dto.GenreFromModel,
		},
	}
}

func (s *catalogService[T]) List(ctx context.Context, caller permission.Identity, search string, page repository.Page) (*dto.Paginated[dto.SlugResponse], error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: s.kind}); err != nil {
		return nil, err
	}
	items, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(items, s.toDTO), total, page), nil
}

func (s *catalogService[T]) Create(ctx context.Context, caller permission.Identity, req dto.SlugRequest) (*dto.SlugResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPost, Kind: s.kind}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return nil, validation.Required("name")
	}
	if req.Slug == nil {
		return nil, validation.Required("slug")
	}

	item := new(T)
	_, name, slug := s.fields(item)
	*name, *slug = *req.Name, *req.Slug
	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, s.conflict(err)
	}

	resp := s.toDTO(item)
	return &resp, nil
}

func (s *catalogService[T]) Update(ctx context.Context, caller permission.Identity, slug string, req dto.SlugRequest) (*dto.SlugResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPatch, Kind: s.kind}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	item, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(s.entity, err)
	}

	_, name, newSlug := s.fields(item)
	if req.Name != nil {
		*name = *req.Name
	}
	if req.Slug != nil {
		*newSlug = *req.Slug
	}
	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, s.conflict(err)
	}

	resp := s.toDTO(item)
	return &resp, nil
}

func (s *catalogService[T]) Delete(ctx context.Context, caller permission.Identity, slug string) error {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodDelete, Kind: s.kind}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		return storeErr(s.entity, err)
	}
	s.logger.WithFields(logrus.Fields{s.entity: slug, "by": caller.UserID}).Info("catalog entry deleted")
	return nil
}

func (s *catalogService[T]) validate(ctx context.Context, item *T) error {
	id, name, slug := s.fields(item)
	if err := validation.Name("name", *name, validation.NameMaxLen); err != nil {
		return err
	}
	return validation.Slug(ctx, s.repo, *slug, *id)
}

func (s *catalogService[T]) conflict(err error) error {
	if errors.Is(err, repository.ErrConstraintViolated) {
		return shared.NewValidationError("slug", "this slug is already in use")
	}
	return fmt.Errorf("save %s: %w", s.entity, err)
}
