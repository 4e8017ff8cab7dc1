package service

import (
	"context"
	"fmt"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
)

type CommentService interface {
	List(ctx context.Context, caller permission.Identity, titleID, reviewID int64, page repository.Page) (*dto.Paginated[dto.CommentResponse], error)
	Get(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, caller permission.Identity, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error)
	Update(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64, req dto.CommentRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	perm     *permission.Evaluator
	logger   *logrus.Logger
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository, perm *permission.Evaluator, logger *logrus.Logger) CommentService {
	return &commentService{comments: comments, reviews: reviews, perm: perm, logger: logger}
}

func (s *commentService) List(ctx context.Context, caller permission.Identity, titleID, reviewID int64, page repository.Page) (*dto.Paginated[dto.CommentResponse], error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindComment}); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comments, total, err := s.comments.ListByReview(ctx, reviewID, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(comments, dto.CommentFromModel), total, page), nil
}

func (s *commentService) Get(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindComment}); err != nil {
		return nil, err
	}
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, caller permission.Identity, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPost, Kind: permission.KindComment}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if req.Text == nil {
		return nil, validation.Required("text")
	}
	if err := validation.Text("text", *req.Text); err != nil {
		return nil, err
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: caller.UserID, Text: *req.Text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.Get(ctx, caller, titleID, reviewID, comment.ID)
}

func (s *commentService) Update(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64, req dto.CommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.authorize(ctx, caller, http.MethodPatch, titleID, reviewID, commentID)
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
		comment.Text = *req.Text
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, caller permission.Identity, titleID, reviewID, commentID int64) error {
	comment, err := s.authorize(ctx, caller, http.MethodDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return storeErr("comment", err)
	}
	s.logger.WithFields(logrus.Fields{"comment_id": comment.ID, "by": caller.UserID}).Info("comment deleted")
	return nil
}

func (s *commentService) authorize(ctx context.Context, caller permission.Identity, verb string, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if caller.IsAnonymous() {
		return nil, s.perm.Check(caller, permission.Request{Verb: verb, Kind: permission.KindComment})
	}
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.perm.Check(caller, permission.Request{Verb: verb, Kind: permission.KindComment, Owner: comment.AuthorID}); err != nil {
		return nil, err
	}
	return comment, nil
}

// find resolves the comment through its review so a comment is never reached
// under the wrong title.
func (s *commentService) find(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, storeErr("comment", err)
	}
	return comment, nil
}

func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByID(ctx, titleID, reviewID); err != nil {
		return storeErr("review", err)
	}
	return nil
}
