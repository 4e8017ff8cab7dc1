package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/shared"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignup_RepeatResendsNewCodeWithoutNewAccount(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	var codes []string
	mailer.On("Send", mock.Anything, mock.AnythingOfType("string"), "a@x.com").
		Run(func(args mock.Arguments) { codes = append(codes, args.String(1)) }).
		Return(nil)
	svc := f.authService(mailer)
	ctx := context.Background()

	req := dto.SignupRequest{Username: "alice", Email: "a@x.com"}
	resp, err := svc.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	_, err = svc.Signup(ctx, req)
	require.NoError(t, err)

	mailer.AssertNumberOfCalls(t, "Send", 2)
	require.Len(t, codes, 2)
	assert.NotEqual(t, codes[0], codes[1])

	_, total, err := f.users.List(ctx, "", pageOne)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// only the latest code is active
	_, err = svc.ExchangeToken(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: codes[0]})
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))

	tok, err := svc.ExchangeToken(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: codes[1]})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
}

func TestSignup_StoresOnlyCodeHash(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	var code string
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(1) }).
		Return(nil)
	svc := f.authService(mailer)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	user, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ConfirmationCode)
	assert.NotEqual(t, code, user.ConfirmationCode)
	assert.Equal(t, "user", user.Role)
	assert.Nil(t, user.ConfirmedAt)
}

func TestSignup_UsernameWithOtherEmailIsRejected(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := f.authService(mailer)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "other@x.com"})
	assertValidationField(t, err, "username")
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestSignup_EmailOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := f.authService(mailer)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "bob", Email: "a@x.com"})
	assertValidationField(t, err, "email")
}

func TestSignup_InvalidInput(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	svc := f.authService(mailer)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "me", Email: "me@x.com"})
	assertValidationField(t, err, "username")

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "bad name", Email: "a@x.com"})
	assertValidationField(t, err, "username")

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "nope"})
	assertValidationField(t, err, "email")

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SignupsTotal.WithLabelValues("rejected")))
}

func TestSignup_MailFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc := f.authService(mailer)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MailFailuresTotal))
}

func TestExchangeToken_Errors(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := f.authService(mailer)
	ctx := context.Background()

	_, err := svc.ExchangeToken(ctx, dto.TokenRequest{Username: "ghost", ConfirmationCode: "x"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = svc.ExchangeToken(ctx, dto.TokenRequest{ConfirmationCode: "x"})
	assertValidationField(t, err, "username")

	_, err = svc.ExchangeToken(ctx, dto.TokenRequest{Username: "alice"})
	assertValidationField(t, err, "confirmation_code")

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.ExchangeToken(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: "wrong"})
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestExchangeToken_ConfirmsAndCodeStaysValid(t *testing.T) {
	f := newFixture(t)
	mailer := new(MockMailer)
	var code string
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(1) }).
		Return(nil)
	svc := f.authService(mailer)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := svc.ExchangeToken(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: code})
		require.NoError(t, err)
	}

	user, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user.ConfirmedAt)
	assert.True(t, user.ConfirmedAt.Equal(fixed))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.TokensIssuedTotal))
}

func TestIdentify_UsesStoredRole(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(new(MockMailer))
	ctx := context.Background()

	id := f.addUser(t, "alice", "user")
	user, err := f.users.FindByID(ctx, id.UserID)
	require.NoError(t, err)

	token, err := svc.tokens.IssueToken(user)
	require.NoError(t, err)

	got, err := svc.Identify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// promotion after issue is visible on the next request
	user.Role = "moderator"
	require.NoError(t, f.users.Update(ctx, user))
	got, err = svc.Identify(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.IsModerator())

	require.NoError(t, f.users.Delete(ctx, user.ID))
	_, err = svc.Identify(ctx, token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIdentify_RejectsGarbage(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(new(MockMailer))

	got, err := svc.Identify(context.Background(), "not-a-jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.True(t, got.IsAnonymous())
}
