package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-hq/commune/internal/session"
)

func newAuthService() (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	sessions := session.NewManager(sessionRepo, time.Hour)
	return NewAuthService(userRepo, sessions), userRepo, sessionRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.Session.ID)
	assert.NotEqual(t, "s3cretpass", resp.User.PasswordHash, "password must not be stored in the clear")

	login, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
	assert.NotEqual(t, resp.Session.ID, login.Session.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	require.NotNil(t, first.User)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "s3cretpass"})
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, _, sessionRepo := newAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Session.ID))

	stored, err := sessionRepo.Get(ctx, resp.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := hashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, verifyPassword("correct horse", hash))
	assert.False(t, verifyPassword("wrong horse", hash))
	assert.False(t, verifyPassword("correct horse", "not-a-valid-hash"))
}
