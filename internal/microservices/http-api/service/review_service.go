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
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
)

type ReviewService interface {
	List(ctx context.Context, caller permission.Identity, titleID int64, page repository.Page) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, caller permission.Identity, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, caller permission.Identity, titleID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, caller permission.Identity, titleID, reviewID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, caller permission.Identity, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	perm    *permission.Evaluator
	logger  *logrus.Logger
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository, perm *permission.Evaluator, logger *logrus.Logger) ReviewService {
	return &reviewService{reviews: reviews, titles: titles, perm: perm, logger: logger}
}

func (s *reviewService) List(ctx context.Context, caller permission.Identity, titleID int64, page repository.Page) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindReview}); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	reviews, total, err := s.reviews.ListByTitle(ctx, titleID, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(reviews, dto.ReviewFromModel), total, page), nil
}

func (s *reviewService) Get(ctx context.Context, caller permission.Identity, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindReview}); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, storeErr("review", err)
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

// Create accepts one review per author per title. The pre-check gives a clean
// error; the unique index settles concurrent attempts.
func (s *reviewService) Create(ctx context.Context, caller permission.Identity, titleID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPost, Kind: permission.KindReview}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	if req.Text == nil {
		return nil, validation.Required("text")
	}
	if err := validation.Text("text", *req.Text); err != nil {
		return nil, err
	}
	score, err := validation.ScoreNumber(req.Score)
	if err != nil {
		return nil, err
	}
	if err := validation.UniqueReview(ctx, s.reviews, titleID, caller.UserID); err != nil {
		return nil, err
	}

	review := &models.Review{TitleID: titleID, AuthorID: caller.UserID, Text: *req.Text, Score: score}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConstraintViolated) {
			return nil, validation.DuplicateReview()
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return s.Get(ctx, caller, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, caller permission.Identity, titleID, reviewID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.authorize(ctx, caller, http.MethodPatch, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}

	if req.Text != nil {
		if err := validation.Text("text", *req.Text); err != nil {
			return nil, err
		}
		review.Text = *req.Text
	}
	if req.Score != "" {
		score, err := validation.ScoreNumber(req.Score)
		if err != nil {
			return nil, err
		}
		review.Score = score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, caller permission.Identity, titleID, reviewID int64) error {
	review, err := s.authorize(ctx, caller, http.MethodDelete, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return storeErr("review", err)
	}
	s.logger.WithFields(logrus.Fields{"review_id": review.ID, "author_id": review.AuthorID, "by": caller.UserID}).Info("review deleted")
	return nil
}

// authorize loads the review and checks the caller against its author.
// Anonymous callers are refused before the lookup.
func (s *reviewService) authorize(ctx context.Context, caller permission.Identity, verb string, titleID, reviewID int64) (*models.Review, error) {
	if caller.IsAnonymous() {
		return nil, s.perm.Check(caller, permission.Request{Verb: verb, Kind: permission.KindReview})
	}
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, storeErr("review", err)
	}
	if err := s.perm.Check(caller, permission.Request{Verb: verb, Kind: permission.KindReview, Owner: review.AuthorID}); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return storeErr("title", repository.ErrNotFound)
	}
	return nil
}
