package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
)

func adminTestRouter(t *testing.T, key string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	router := gin.New()
	admin := router.Group("/admin")
	admin.Use(NewAdminMiddleware(log, key).RequireAdminKey())
	admin.POST("/rewards", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireAdminKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		wantStatus int
	}{
		{"matching_key", "s3cret", "s3cret", http.StatusOK},
		{"wrong_key", "s3cret", "guess", http.StatusForbidden},
		{"missing_header", "s3cret", "", http.StatusForbidden},
		{"no_key_configured_fails_closed", "", "anything", http.StatusForbidden},
		{"no_key_configured_empty_header", "", "", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := adminTestRouter(t, tc.configured)
			req := httptest.NewRequest(http.MethodPost, "/admin/rewards", nil)
			if tc.presented != "" {
				req.Header.Set("X-Admin-Key", tc.presented)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
