package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"yamdb/internal/logging"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/permission"
	"yamdb/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_CreateAndDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.titles, f.perm, logging.Discard())
	title := f.addTitle(t, "Heat", 1995)
	alice := f.addUser(t, "alice", permission.RoleUser)
	ctx := context.Background()

	resp, err := svc.Create(ctx, alice, title.ID, dto.ReviewRequest{Text: ptr("great"), Score: json.Number("9")})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Author)
	assert.Equal(t, 9, resp.Score)
	assert.False(t, resp.PubDate.IsZero())

	_, err = svc.Create(ctx, alice, title.ID, dto.ReviewRequest{Text: ptr("again"), Score: json.Number("3")})
	assertValidationField(t, err, "review")
}

func TestReview_ScoreRange(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.titles, f.perm, logging.Discard())
	title := f.addTitle(t, "Heat", 1995)
	alice := f.addUser(t, "alice", permission.RoleUser)

	for _, score := range []json.Number{"0", "11", "7.5", ""} {
		_, err := svc.Create(context.Background(), alice, title.ID, dto.ReviewRequest{Text: ptr("x"), Score: score})
		assertValidationField(t, err, "score")
	}
}

func TestReview_AnonymousAndMissingTitle(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.titles, f.perm, logging.Discard())
	alice := f.addUser(t, "alice", permission.RoleUser)
	ctx := context.Background()

	_, err := svc.Create(ctx, permission.Anonymous(), 1, dto.ReviewRequest{Text: ptr("x"), Score: "5"})
	assert.True(t, errors.Is(err, shared.ErrPermissionDenied))

	_, err = svc.Create(ctx, alice, 999, dto.ReviewRequest{Text: ptr("x"), Score: "5"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = svc.List(ctx, permission.Anonymous(), 999, pageOne)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReview_OwnershipRules(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.titles, f.perm, logging.Discard())
	title := f.addTitle(t, "Heat", 1995)
	alice := f.addUser(t, "alice", permission.RoleUser)
	bob := f.addUser(t, "bob", permission.RoleUser)
	mod := f.addUser(t, "mod", permission.RoleModerator)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, title.ID, dto.ReviewRequest{Text: ptr("great"), Score: "9"})
	require.NoError(t, err)

	// permission precedes validation of the bad score
	_, err = svc.Update(ctx, bob, title.ID, created.ID, dto.ReviewRequest{Score: "42"})
	assert.True(t, errors.Is(err, shared.ErrPermissionDenied))
	assert.True(t, errors.Is(svc.Delete(ctx, bob, title.ID, created.ID), shared.ErrPermissionDenied))

	_, err = svc.Update(ctx, permission.Anonymous(), title.ID, created.ID, dto.ReviewRequest{Text: ptr("x")})
	assert.True(t, errors.Is(err, shared.ErrPermissionDenied))

	updated, err := svc.Update(ctx, alice, title.ID, created.ID, dto.ReviewRequest{Score: "8"})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Score)
	assert.Equal(t, "great", updated.Text)
	assert.Equal(t, created.PubDate.Unix(), updated.PubDate.Unix())

	_, err = svc.Update(ctx, mod, title.ID, created.ID, dto.ReviewRequest{Text: ptr("moderated")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, mod, title.ID, created.ID))
	_, err = svc.Get(ctx, permission.Anonymous(), title.ID, created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReview_ConcurrentCreateYieldsOneReview(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.titles, f.perm, logging.Discard())
	title := f.addTitle(t, "Heat", 1995)
	alice := f.addUser(t, "alice", permission.RoleUser)

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), alice, title.ID, dto.ReviewRequest{Text: ptr("race"), Score: "5"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, shared.ErrValidation), "unexpected %v", err)
	}
	assert.Equal(t, 1, ok)

	list, err := svc.List(context.Background(), permission.Anonymous(), title.ID, pageOne)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Pagination.Total)
}
