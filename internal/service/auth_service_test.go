package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type userRepoStub struct {
	users  map[string]*models.User
	nextID int64
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]*models.User), nextID: 1}
}

func (r *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := r.users[email]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.Email] = user
	return nil
}

func newAuthServiceForTest(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthServiceConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
	})
}

func TestAuthServiceSeedAndLogin(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthServiceForTest(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "s3cret"))
	require.Len(t, repo.users, 1)

	// Seeding again is a no-op.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "s3cret"))
	require.Len(t, repo.users, 1)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	require.NotNil(t, resp.User)
	assert.Equal(t, "admin@example.com", resp.User.Email)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthServiceForTest(repo)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "s3cret"))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidLogin.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLogin.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(newUserRepoStub())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
