package requestid

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_backend/internal/platform/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		// リクエスト専用の子ロガーが入っている
		assert.NotSame(t, slog.Default(), logger.FromContext(c.Request.Context()))
		c.String(http.StatusOK, c.GetString(ContextKey))
	})
	return r
}

func TestMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(HeaderName)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestMiddleware_KeepsIncomingID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderName, "upstream-123")
	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, req)

	assert.Equal(t, "upstream-123", w.Header().Get(HeaderName))
}

func TestMiddleware_ReplacesOversizedID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderName, strings.Repeat("x", 500))
	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get(HeaderName))
	assert.NoError(t, err)
}
