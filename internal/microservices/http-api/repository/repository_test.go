package repository_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"yamdb/database/dbtest"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositorySuite struct {
	suite.Suite
	// newDB opens a fresh migrated database per test, sqlite by default
	newDB      func(t testing.TB) *gorm.DB
	db         *gorm.DB
	ctx        context.Context
	users      repository.UserRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     *repository.TitleRepo
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
}

func (s *RepositorySuite) SetupTest() {
	if s.newDB == nil {
		s.newDB = dbtest.NewSQLite
	}
	s.db = s.newDB(s.T())
	s.ctx = context.Background()
	s.users = repository.NewUserRepository(s.db)
	s.categories = repository.NewCategoryRepository(s.db)
	s.genres = repository.NewGenreRepository(s.db)
	s.titles = repository.NewTitleRepo(s.db)
	s.reviews = repository.NewReviewRepository(s.db)
	s.comments = repository.NewCommentRepository(s.db)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) newUser(name string) *models.User {
	u := &models.User{Username: name, Email: name + "@example.com"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *RepositorySuite) newTitle(name string, year int) *models.Title {
	t := &models.Title{Name: name, Year: year}
	s.Require().NoError(s.titles.Create(s.ctx, t, nil))
	return t
}

func (s *RepositorySuite) TestUser_DefaultsAndLookups() {
	u := s.newUser("alice")
	s.NotEmpty(u.ID)

	found, err := s.users.FindByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("user", found.Role)
	s.False(found.IsSuperuser)

	_, err = s.users.FindByUsername(s.ctx, "nobody")
	s.True(errors.Is(err, repository.ErrNotFound))

	exists, err := s.users.EmailExists(s.ctx, "alice@example.com", "")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.users.EmailExists(s.ctx, "alice@example.com", u.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositorySuite) TestUser_DuplicateUsernameViolatesConstraint() {
	s.newUser("alice")
	err := s.users.Create(s.ctx, &models.User{Username: "alice", Email: "other@example.com"})
	s.True(errors.Is(err, repository.ErrConstraintViolated), "got %v", err)
}

func (s *RepositorySuite) TestUser_ConfirmationCodeAndConfirmation() {
	u := s.newUser("alice")

	s.Require().NoError(s.users.SetConfirmationCode(s.ctx, u.ID, "hash-1"))
	s.Require().NoError(s.users.SetConfirmationCode(s.ctx, u.ID, "hash-2"))

	found, err := s.users.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("hash-2", found.ConfirmationCode)
	s.Nil(found.ConfirmedAt)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.users.MarkConfirmed(s.ctx, u.ID, first))
	s.Require().NoError(s.users.MarkConfirmed(s.ctx, u.ID, first.Add(time.Hour)))

	found, err = s.users.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.ConfirmedAt)
	s.True(found.ConfirmedAt.Equal(first))
}

func (s *RepositorySuite) TestUser_ListSearch() {
	s.newUser("alice")
	s.newUser("alicia")
	s.newUser("bob")

	list, total, err := s.users.List(s.ctx, "ali", repository.Page{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(list, 2)
	s.Equal("alice", list[0].Username)

	list, total, err = s.users.List(s.ctx, "ali", repository.Page{Page: math.MaxInt, PageSize: 100})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Empty(list)
}

func (s *RepositorySuite) TestCatalog_SlugUniquePerKind() {
	s.Require().NoError(s.categories.Create(s.ctx, &models.Category{Name: "Films", Slug: "films"}))
	err := s.categories.Create(s.ctx, &models.Category{Name: "Movies", Slug: "films"})
	s.True(errors.Is(err, repository.ErrConstraintViolated))

	// the same slug is free in another kind
	s.NoError(s.genres.Create(s.ctx, &models.Genre{Name: "Films", Slug: "films"}))
}

func (s *RepositorySuite) TestCategoryDelete_NullsTitleCategory() {
	cat := &models.Category{Name: "Films", Slug: "films"}
	s.Require().NoError(s.categories.Create(s.ctx, cat))

	title := &models.Title{Name: "Heat", Year: 1995, CategoryID: &cat.ID}
	s.Require().NoError(s.titles.Create(s.ctx, title, nil))

	s.Require().NoError(s.categories.Delete(s.ctx, "films"))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Nil(got.CategoryID)
	s.Nil(got.Category)

	s.True(errors.Is(s.categories.Delete(s.ctx, "films"), repository.ErrNotFound))
}

func (s *RepositorySuite) TestGenreDelete_UnlinksTitles() {
	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	crime := &models.Genre{Name: "Crime", Slug: "crime"}
	s.Require().NoError(s.genres.Create(s.ctx, drama))
	s.Require().NoError(s.genres.Create(s.ctx, crime))

	title := &models.Title{Name: "Heat", Year: 1995}
	s.Require().NoError(s.titles.Create(s.ctx, title, []int64{drama.ID, crime.ID, drama.ID}))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Len(got.Genres, 2)

	s.Require().NoError(s.genres.Delete(s.ctx, "drama"))

	got, err = s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Genres, 1)
	s.Equal("crime", got.Genres[0].Slug)
}

func (s *RepositorySuite) TestTitleGenre_PairIsUnique() {
	g := &models.Genre{Name: "Drama", Slug: "drama"}
	s.Require().NoError(s.genres.Create(s.ctx, g))
	title := s.newTitle("Heat", 1995)

	s.Require().NoError(s.db.Create(&models.TitleGenre{TitleID: title.ID, GenreID: g.ID}).Error)
	err := s.db.Create(&models.TitleGenre{TitleID: title.ID, GenreID: g.ID}).Error
	s.True(repository.IsConstraintViolation(err), "got %v", err)
}

func (s *RepositorySuite) TestTitle_RatingIsMeanOfScores() {
	title := s.newTitle("Heat", 1995)
	other := s.newTitle("Ronin", 1998)

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Nil(got.Rating, "no reviews means no rating")

	for i, score := range []int{10, 7, 8} {
		u := s.newUser("critic" + string(rune('a'+i)))
		s.Require().NoError(s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "ok", Score: score}))
	}

	got, err = s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Rating)
	s.InDelta(25.0/3.0, *got.Rating, 0.0001)

	list, total, err := s.titles.List(s.ctx, repository.TitleFilter{}, repository.Page{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Equal(other.ID, list[0].ID, "newest id first")
	s.Nil(list[0].Rating)
	s.NotNil(list[1].Rating)
}

func (s *RepositorySuite) TestTitle_Filters() {
	cat := &models.Category{Name: "Films", Slug: "films"}
	s.Require().NoError(s.categories.Create(s.ctx, cat))
	g := &models.Genre{Name: "Crime", Slug: "crime"}
	s.Require().NoError(s.genres.Create(s.ctx, g))

	heat := &models.Title{Name: "Heat", Year: 1995, CategoryID: &cat.ID}
	s.Require().NoError(s.titles.Create(s.ctx, heat, []int64{g.ID}))
	s.newTitle("Heathers", 1988)
	s.newTitle("Alien", 1979)

	cases := []struct {
		filter repository.TitleFilter
		want   int64
	}{
		{repository.TitleFilter{Name: "heat"}, 2},
		{repository.TitleFilter{Year: 1979}, 1},
		{repository.TitleFilter{Category: "films"}, 1},
		{repository.TitleFilter{Genre: "crime"}, 1},
		{repository.TitleFilter{Genre: "crime", Name: "heathers"}, 0},
	}
	for _, c := range cases {
		_, total, err := s.titles.List(s.ctx, c.filter, repository.Page{Page: 1, PageSize: 10})
		s.Require().NoError(err)
		s.Equal(c.want, total, "%+v", c.filter)
	}
}

func (s *RepositorySuite) TestTitleDelete_CascadesReviewsAndComments() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")
	review := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "great", Score: 9}
	s.Require().NoError(s.reviews.Create(s.ctx, review))
	s.Require().NoError(s.comments.Create(s.ctx, &models.Comment{ReviewID: review.ID, AuthorID: u.ID, Text: "agreed"}))

	s.Require().NoError(s.titles.Delete(s.ctx, title.ID))

	var reviews, comments int64
	s.db.Model(&models.Review{}).Count(&reviews)
	s.db.Model(&models.Comment{}).Count(&comments)
	s.Zero(reviews)
	s.Zero(comments)

	s.True(errors.Is(s.titles.Delete(s.ctx, title.ID), repository.ErrNotFound))
}

func (s *RepositorySuite) TestUserDelete_CascadesAuthoredContent() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")
	review := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "great", Score: 9}
	s.Require().NoError(s.reviews.Create(s.ctx, review))
	s.Require().NoError(s.comments.Create(s.ctx, &models.Comment{ReviewID: review.ID, AuthorID: u.ID, Text: "self"}))

	s.Require().NoError(s.users.Delete(s.ctx, u.ID))

	var reviews, comments int64
	s.db.Model(&models.Review{}).Count(&reviews)
	s.db.Model(&models.Comment{}).Count(&comments)
	s.Zero(reviews)
	s.Zero(comments)
}

func (s *RepositorySuite) TestReview_DuplicatePairRejectedByStore() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")

	s.Require().NoError(s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "one", Score: 5}))
	err := s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "two", Score: 6})
	s.True(errors.Is(err, repository.ErrConstraintViolated), "got %v", err)
}

func (s *RepositorySuite) TestReview_ConcurrentCreatesLeaveOneRow() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, violated := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "race", Score: 1 + i%10})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrConstraintViolated):
				violated++
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(attempts-1, violated)

	exists, err := s.reviews.ReviewExists(s.ctx, title.ID, u.ID)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RepositorySuite) TestReview_ScoreCheckConstraint() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")
	err := s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "bad", Score: 11})
	s.Error(err)
}

func (s *RepositorySuite) TestReview_UpdateKeepsImmutableFields() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")
	review := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "good", Score: 7}
	s.Require().NoError(s.reviews.Create(s.ctx, review))
	pub := review.PubDate

	review.Text = "better"
	review.Score = 8
	review.PubDate = pub.Add(24 * time.Hour)
	s.Require().NoError(s.reviews.Update(s.ctx, review))

	got, err := s.reviews.GetByID(s.ctx, title.ID, review.ID)
	s.Require().NoError(err)
	s.Equal("better", got.Text)
	s.Equal(8, got.Score)
	s.WithinDuration(pub, got.PubDate, time.Second)
	s.Equal("alice", got.Author.Username)
}

func (s *RepositorySuite) TestReview_ScopedToTitle() {
	title := s.newTitle("Heat", 1995)
	other := s.newTitle("Ronin", 1998)
	u := s.newUser("alice")
	review := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "good", Score: 7}
	s.Require().NoError(s.reviews.Create(s.ctx, review))

	_, err := s.reviews.GetByID(s.ctx, other.ID, review.ID)
	s.True(errors.Is(err, repository.ErrNotFound))
}

func (s *RepositorySuite) TestComments_NewestFirst() {
	title := s.newTitle("Heat", 1995)
	u := s.newUser("alice")
	review := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "good", Score: 7}
	s.Require().NoError(s.reviews.Create(s.ctx, review))

	for _, text := range []string{"first", "second", "third"} {
		s.Require().NoError(s.comments.Create(s.ctx, &models.Comment{ReviewID: review.ID, AuthorID: u.ID, Text: text}))
	}

	list, total, err := s.comments.ListByReview(s.ctx, review.ID, repository.Page{Page: 1, PageSize: 2})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(list, 2)
	s.Equal("third", list[0].Text)
	s.Equal("second", list[1].Text)
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, repository.IsConstraintViolation(gorm.ErrDuplicatedKey))
	assert.False(t, repository.IsConstraintViolation(errors.New("boom")))
	require.False(t, repository.IsConstraintViolation(nil))
}
