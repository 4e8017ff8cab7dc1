package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/permission"
	"yamdb/internal/shared"
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
)

// Mailer delivers a confirmation code. Delivery is best effort; the caller does not retry.
type Mailer interface {
	Send(ctx context.Context, code, address string) error
}

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	ExchangeToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	// Identify resolves a bearer token to the caller's identity using the stored role.
	Identify(ctx context.Context, token string) (permission.Identity, error)
}

type authService struct {
	users   repository.UserRepository
	mailer  Mailer
	tokens  TokenIssuer
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	mailer Mailer,
	tokens TokenIssuer,
	logger *logrus.Logger,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		users:   users,
		mailer:  mailer,
		tokens:  tokens,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Signup creates a pending account, or re-issues the code when the same
// username and email ask again. A known username with another email is rejected.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := validation.UsernameFormat(req.Username); err != nil {
		s.metrics.ObserveSignup("rejected")
		return nil, err
	}
	if err := validation.EmailFormat(req.Email); err != nil {
		s.metrics.ObserveSignup("rejected")
		return nil, err
	}

	code := auth.NewConfirmationCode()
	codeHash, err := auth.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if user.Email != req.Email {
			s.metrics.ObserveSignup("rejected")
			return nil, shared.NewValidationError("username", "a user with that username is registered with another email")
		}
		if err := s.users.SetConfirmationCode(ctx, user.ID, codeHash); err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
		s.metrics.ObserveSignup("resent")

	case errors.Is(err, repository.ErrNotFound):
		if err := validation.Email(ctx, s.users, req.Email, ""); err != nil {
			s.metrics.ObserveSignup("rejected")
			return nil, err
		}
		user = &models.User{
			Username:         req.Username,
			Email:            req.Email,
			Role:             string(permission.RoleUser),
			ConfirmationCode: codeHash,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConstraintViolated) {
				// lost a race against a concurrent signup
				s.metrics.ObserveSignup("rejected")
				return nil, shared.NewValidationError("username", "a user with that username or email already exists")
			}
			return nil, fmt.Errorf("signup: %w", err)
		}
		s.metrics.ObserveSignup("created")

	default:
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.deliver(ctx, code, user)
	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

// deliver sends the code once; failures are logged and counted, never returned.
func (s *authService) deliver(ctx context.Context, code string, user *models.User) {
	if err := s.mailer.Send(ctx, code, user.Email); err != nil {
		s.metrics.ObserveMailFailure()
		s.logger.WithError(err).WithField("username", user.Username).Warn("confirmation mail not delivered")
		return
	}
	s.logger.WithField("username", user.Username).Debug("confirmation code sent")
}

// ExchangeToken trades a valid confirmation code for a bearer token.
// The code stays valid after use.
func (s *authService) ExchangeToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	if req.Username == "" {
		return nil, validation.Required("username")
	}
	if req.ConfirmationCode == "" {
		return nil, validation.Required("confirmation_code")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, storeErr("user", err)
	}

	if !auth.VerifyCode(user.ConfirmationCode, req.ConfirmationCode) {
		s.logger.WithField("username", user.Username).Info("confirmation code mismatch")
		return nil, fmt.Errorf("confirmation code: %w", shared.ErrInvalidCredentials)
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.MarkConfirmed(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("confirm user: %w", err)
	}
	s.metrics.ObserveTokenIssued()

	return &dto.TokenResponse{Token: token}, nil
}

func (s *authService) Identify(ctx context.Context, token string) (permission.Identity, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return permission.Anonymous(), err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// the account was deleted after the token was issued
			return permission.Anonymous(), fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return permission.Anonymous(), err
	}

	return permission.Authenticated(user.ID, user.Role, user.IsSuperuser), nil
}
