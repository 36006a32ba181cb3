package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
	"github.com/coursedocs/catalog-api/internal/service"
)

type userRepoStub struct {
	users map[string]*models.User
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
	user.ID = int64(len(r.users) + 1)
	r.users[user.Email] = user
	return nil
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(&userRepoStub{users: make(map[string]*models.User)}, nil, nil, service.AuthServiceConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
	})

	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		claims := CurrentUser(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return r, authSvc
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	r, _ := newGuardedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsMalformedHeader(t *testing.T) {
	r, _ := newGuardedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	r, authSvc := newGuardedRouter(t)

	require.NoError(t, authSvc.EnsureAdmin(context.Background(), "admin@example.com", "s3cret"))
	login, err := authSvc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@example.com")
}
