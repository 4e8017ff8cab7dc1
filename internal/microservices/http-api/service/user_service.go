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

type UserService interface {
	GetMe(ctx context.Context, caller permission.Identity) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, caller permission.Identity, req dto.UpdateUserRequest) (*dto.UserResponse, error)

	ListUsers(ctx context.Context, caller permission.Identity, search string, page repository.Page) (*dto.Paginated[dto.UserResponse], error)
	GetUser(ctx context.Context, caller permission.Identity, username string) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, caller permission.Identity, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, caller permission.Identity, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, caller permission.Identity, username string) error
}

type userService struct {
	users  repository.UserRepository
	perm   *permission.Evaluator
	logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, perm *permission.Evaluator, logger *logrus.Logger) UserService {
	return &userService{users: users, perm: perm, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, caller permission.Identity) (*dto.UserResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindSelfProfile, Owner: caller.UserID}); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("user", err)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

// UpdateMe edits the caller's own profile. A payload carrying role is refused
// as a permission failure whatever the caller's role.
func (s *userService) UpdateMe(ctx context.Context, caller permission.Identity, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	err := s.perm.Check(caller, permission.Request{
		Verb:   http.MethodPatch,
		Kind:   permission.KindSelfProfile,
		Owner:  caller.UserID,
		Fields: req.Fields(),
	})
	if err != nil {
		if req.Role != nil {
			s.logger.WithField("user_id", caller.UserID).Warn("self-service role change refused")
		}
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("user", err)
	}
	return s.update(ctx, user, req)
}

func (s *userService) ListUsers(ctx context.Context, caller permission.Identity, search string, page repository.Page) (*dto.Paginated[dto.UserResponse], error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindUser}); err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, search, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(users, dto.UserFromModel), total, page), nil
}

func (s *userService) GetUser(ctx context.Context, caller permission.Identity, username string) (*dto.UserResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodGet, Kind: permission.KindUser}); err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("user", err)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) CreateUser(ctx context.Context, caller permission.Identity, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPost, Kind: permission.KindUser}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}

	if err := validation.Username(ctx, s.users, req.Username, ""); err != nil {
		return nil, err
	}
	if err := validation.Email(ctx, s.users, req.Email, ""); err != nil {
		return nil, err
	}
	if err := validatePersonNames(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	role := permission.RoleUser
	if req.Role != "" {
		r, err := parseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      string(role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, userConflict(err)
	}

	s.logger.WithFields(logrus.Fields{"username": user.Username, "role": user.Role, "by": caller.UserID}).Info("user created")
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, caller permission.Identity, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodPatch, Kind: permission.KindUser}); err != nil {
		return nil, err
	}
	if err := req.DecodeErr(); err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("user", err)
	}
	return s.update(ctx, user, req)
}

func (s *userService) DeleteUser(ctx context.Context, caller permission.Identity, username string) error {
	if err := s.perm.Check(caller, permission.Request{Verb: http.MethodDelete, Kind: permission.KindUser}); err != nil {
		return err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return storeErr("user", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return storeErr("user", err)
	}
	s.logger.WithFields(logrus.Fields{"username": username, "by": caller.UserID}).Info("user deleted")
	return nil
}

// update applies a partial edit after validating every present field.
// Authorization, including whether role may be set, is settled by the caller.
func (s *userService) update(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil {
		if err := validation.Username(ctx, s.users, *req.Username, user.ID); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if err := validation.Email(ctx, s.users, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if err := validatePersonNames(user.FirstName, user.LastName); err != nil {
		return nil, err
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if user.Role != string(role) {
			s.logger.WithFields(logrus.Fields{"username": user.Username, "from": user.Role, "to": role}).Info("role changed")
		}
		user.Role = string(role)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, userConflict(err)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func validatePersonNames(first, last string) error {
	if err := validation.OptionalName("first_name", first, validation.PersonNameLen); err != nil {
		return err
	}
	return validation.OptionalName("last_name", last, validation.PersonNameLen)
}

func parseRole(s string) (permission.Role, error) {
	role, err := permission.ParseRole(s)
	if err != nil {
		return "", shared.NewValidationError("role", "must be one of: user, moderator, admin")
	}
	return role, nil
}

// userConflict reports a uniqueness race the pre-checks did not catch.
func userConflict(err error) error {
	if errors.Is(err, repository.ErrConstraintViolated) {
		return shared.NewValidationError("username", "a user with that username or email already exists")
	}
	return fmt.Errorf("save user: %w", err)
}
