// server/internal/api/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spare-parts-api-server/internal/auth"
	"spare-parts-api-server/internal/models"
)

func setupTestRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/")
	group.Use(Authenticate())
	if len(roles) > 0 {
		group.Use(Authorize(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("user_email"), "role": c.GetString("user_role")})
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	auth.SetSecret("test-secret")

	token, err := auth.GenerateJWT("keeper@example.com", "Keeper", models.RoleStorekeeper)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"missing bearer prefix", token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestAuthenticateRejectsTokenSignedWithOtherSecret(t *testing.T) {
	auth.SetSecret("other-secret")
	token, err := auth.GenerateJWT("keeper@example.com", "Keeper", models.RoleStorekeeper)
	require.NoError(t, err)

	auth.SetSecret("test-secret")
	router := setupTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorize(t *testing.T) {
	auth.SetSecret("test-secret")

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"role in list", models.RoleAdmin, []string{models.RoleAdmin, models.RoleStorekeeper}, http.StatusOK},
		{"role not in list", models.RoleViewer, []string{models.RoleAdmin, models.RoleStorekeeper}, http.StatusForbidden},
		{"single allowed role", models.RoleStorekeeper, []string{models.RoleStorekeeper}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GenerateJWT("user@example.com", "User", tt.role)
			require.NoError(t, err)

			router := setupTestRouter(tt.allowed...)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
