package cronauth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestBearerSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
		wantRun  bool
	}{
		{name: "valid secret", secret: "s3cret", header: "Bearer s3cret", wantCode: http.StatusOK, wantRun: true},
		{name: "missing header", secret: "s3cret", wantCode: http.StatusUnauthorized},
		{name: "wrong secret", secret: "s3cret", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "secret as prefix", secret: "s3cret", header: "Bearer s3cret-and-more", wantCode: http.StatusUnauthorized},
		{name: "no bearer scheme", secret: "s3cret", header: "s3cret", wantCode: http.StatusUnauthorized},
		{name: "unset secret", secret: "", header: "Bearer ", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ran := false
			r := gin.New()
			r.POST("/cron", BearerSecret(tt.secret), func(c *gin.Context) {
				ran = true
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/cron", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantRun, ran)
		})
	}
}
