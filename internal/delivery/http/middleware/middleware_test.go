package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obsidiana-backend/internal/delivery/http/middleware"
	"obsidiana-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("RequestID")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(middleware.RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

func TestCORS(t *testing.T) {
	newRouter := func(production bool) *gin.Engine {
		r := gin.New()
		r.Use(middleware.CORSMiddleware([]string{"https://codigo-obsidiana.dev/"}, production))
		r.POST("/v1/contact", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	preflight := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodOptions, "/v1/contact", nil)
		req.Header.Set("Origin", origin)
		return req
	}

	w := serve(newRouter(true), preflight("https://codigo-obsidiana.dev"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://codigo-obsidiana.dev", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(newRouter(true), preflight("https://evil.example"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(newRouter(true), preflight("http://localhost:4321"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newRouter(false), preflight("http://localhost:4321"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitInMemory(t *testing.T) {
	limiter := middleware.NewRateLimiter(nil, nil)
	defer limiter.Close()

	r := gin.New()
	r.Use(limiter.Middleware(middleware.ContactRateLimitConfig(2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	w := get("10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("10.0.0.2").Code, "limits are per client")
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		c.Error(apperror.Conflict("busy").WithDetails(map[string]string{"hint": "retry"}))
	})
	r.GET("/raw", func(c *gin.Context) {
		c.Error(errors.New("pq: password authentication failed"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"busy","error":{"hint":"retry"}}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
