package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"yamdb/database/dbtest"
	"yamdb/internal/logging"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// MockMailer mocks the Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, code, address string) error {
	args := m.Called(ctx, code, address)
	return args.Error(0)
}

type fixture struct {
	db         *gorm.DB
	users      repository.UserRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     *repository.TitleRepo
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
	perm       *permission.Evaluator
	metrics    *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.NewSQLite(t)
	return &fixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
		genres:     repository.NewGenreRepository(db),
		titles:     repository.NewTitleRepo(db),
		reviews:    repository.NewReviewRepository(db),
		comments:   repository.NewCommentRepository(db),
		perm:       permission.NewEvaluator(),
		metrics:    metrics.New(),
	}
}

// addUser stores a user and returns the identity the middleware would derive.
func (f *fixture) addUser(t *testing.T, username string, role permission.Role) permission.Identity {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: string(role)}
	require.NoError(t, f.users.Create(context.Background(), u))
	return permission.Authenticated(u.ID, u.Role, u.IsSuperuser)
}

func (f *fixture) addTitle(t *testing.T, name string, year int) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	require.NoError(t, f.titles.Create(context.Background(), title, nil))
	return title
}

func (f *fixture) authService(mailer Mailer) *authService {
	return NewAuthService(f.users, mailer, NewJWTIssuer(testSecret, time.Hour), logging.Discard(), f.metrics).(*authService)
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *shared.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	assert.Equal(t, field, ve.Field)
}

func ptr[T any](v T) *T {
	return &v
}

var pageOne = repository.Page{Page: 1, PageSize: 20}
