package permission

import (
	"errors"
	"net/http"
	"testing"

	"yamdb/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	anon      = Anonymous()
	plainUser = Authenticated("u-1", "user", false)
	otherUser = Authenticated("u-2", "user", false)
	moderator = Authenticated("m-1", "moderator", false)
	admin     = Authenticated("a-1", "admin", false)
	superuser = Authenticated("s-1", "user", true)
)

func TestAuthenticated_UnknownRoleDegradesToUser(t *testing.T) {
	id := Authenticated("x", "root", false)
	assert.Equal(t, RoleUser, id.Role)
	assert.False(t, id.IsAdmin())
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("superadmin")
	assert.Error(t, err)
}

func TestAllow_SafeMethodsArePublic(t *testing.T) {
	ev := NewEvaluator()
	kinds := []Kind{KindCategory, KindGenre, KindTitle, KindReview, KindComment}
	for _, k := range kinds {
		for _, verb := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
			assert.True(t, ev.Allow(anon, Request{Verb: verb, Kind: k}), "%s %s", verb, k)
		}
	}
}

func TestAllow_CatalogWritesNeedAdmin(t *testing.T) {
	ev := NewEvaluator()
	verbs := []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete}

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"anonymous", anon, false},
		{"user", plainUser, false},
		{"moderator", moderator, false},
		{"admin", admin, true},
		{"superuser", superuser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []Kind{KindCategory, KindGenre, KindTitle} {
				for _, verb := range verbs {
					assert.Equal(t, tt.want, ev.Allow(tt.id, Request{Verb: verb, Kind: k}), "%s %s", verb, k)
				}
			}
		})
	}
}

func TestAllow_AuthoredResources(t *testing.T) {
	ev := NewEvaluator()

	tests := []struct {
		name string
		id   Identity
		verb string
		want bool
	}{
		{"anonymous post", anon, http.MethodPost, false},
		{"user post", plainUser, http.MethodPost, true},
		{"author patch", plainUser, http.MethodPatch, true},
		{"author delete", plainUser, http.MethodDelete, true},
		{"stranger patch", otherUser, http.MethodPatch, false},
		{"stranger delete", otherUser, http.MethodDelete, false},
		{"moderator patch", moderator, http.MethodPatch, true},
		{"moderator delete", moderator, http.MethodDelete, true},
		{"admin delete", admin, http.MethodDelete, true},
		{"superuser delete", superuser, http.MethodDelete, true},
		{"anonymous delete", anon, http.MethodDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []Kind{KindReview, KindComment} {
				req := Request{Verb: tt.verb, Kind: k, Owner: plainUser.UserID}
				assert.Equal(t, tt.want, ev.Allow(tt.id, req))
			}
		})
	}
}

func TestAllow_AnonymousNeverOwnsOwnerlessResource(t *testing.T) {
	ev := NewEvaluator()
	assert.False(t, ev.Allow(anon, Request{Verb: http.MethodPatch, Kind: KindReview, Owner: ""}))
}

func TestAllow_SelfProfile(t *testing.T) {
	ev := NewEvaluator()

	assert.True(t, ev.Allow(plainUser, Request{Verb: http.MethodGet, Kind: KindSelfProfile, Owner: plainUser.UserID}))
	assert.True(t, ev.Allow(plainUser, Request{
		Verb: http.MethodPatch, Kind: KindSelfProfile, Owner: plainUser.UserID, Fields: []string{"bio", "first_name"},
	}))
	assert.False(t, ev.Allow(anon, Request{Verb: http.MethodGet, Kind: KindSelfProfile}))
	assert.False(t, ev.Allow(otherUser, Request{Verb: http.MethodGet, Kind: KindSelfProfile, Owner: plainUser.UserID}))
	assert.False(t, ev.Allow(plainUser, Request{Verb: http.MethodDelete, Kind: KindSelfProfile, Owner: plainUser.UserID}))
}

func TestAllow_SelfProfileRoleChangeDeniedForEveryone(t *testing.T) {
	ev := NewEvaluator()
	for _, id := range []Identity{plainUser, moderator, admin, superuser} {
		req := Request{Verb: http.MethodPatch, Kind: KindSelfProfile, Owner: id.UserID, Fields: []string{"bio", FieldRole}}
		assert.False(t, ev.Allow(id, req), "role %s", id.Role)

		err := ev.Check(id, req)
		assert.True(t, errors.Is(err, shared.ErrPermissionDenied))
	}
}

func TestAllow_UserAdministration(t *testing.T) {
	ev := NewEvaluator()
	for _, verb := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		req := Request{Verb: verb, Kind: KindUser}
		assert.False(t, ev.Allow(anon, req))
		assert.False(t, ev.Allow(plainUser, req))
		assert.False(t, ev.Allow(moderator, req))
		assert.True(t, ev.Allow(admin, req))
		assert.True(t, ev.Allow(superuser, req))
	}
}

func TestAllow_UnknownVerbOrKind(t *testing.T) {
	ev := NewEvaluator()
	assert.False(t, ev.Allow(admin, Request{Verb: "TRACE", Kind: KindTitle}))
	assert.False(t, ev.Allow(admin, Request{Verb: http.MethodGet, Kind: Kind(99)}))
}

func TestCheck_ReturnsNilWhenAllowed(t *testing.T) {
	ev := NewEvaluator()
	assert.NoError(t, ev.Check(anon, Request{Verb: http.MethodGet, Kind: KindTitle}))

	err := ev.Check(anon, Request{Verb: http.MethodPost, Kind: KindTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}
