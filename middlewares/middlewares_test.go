package middlewares

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/logger"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateBearerToken(t *testing.T) {
	r := gin.New()
	r.GET("/x", ValidateBearerToken("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/x", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/x", http.Header{"Authorization": {"Token secret"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/x", http.Header{"Authorization": {"Bearer wrong"}}).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/x", http.Header{"Authorization": {"Bearer secret"}}).Code)
}

type stubValidator map[string]uint

func (s stubValidator) Validate(token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid")
}

func TestFormTokenMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/form", FormTokenMiddleware(stubValidator{"good": 9}), func(c *gin.Context) {
		id, ok := FormScheduleID(c)
		assert.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"schedule_id": id})
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/form", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/form?token=bad", nil).Code)
	w := serve(r, "GET", "/form?token=good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"schedule_id": 9}`, w.Body.String())
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperrors.NotFound("Case not found"), http.StatusNotFound, `{"error": "Case not found"}`},
		{apperrors.Conflict("PROM already completed"), http.StatusConflict, `{"error": "PROM already completed"}`},
		{apperrors.BadTemplate("Template has no questions"), http.StatusBadRequest, `{"error": "Template has no questions"}`},
		{errors.New("db down"), http.StatusInternalServerError, `{"error": "internal server error"}`},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { RespondError(c, logger.Nop(), tc.err) })
		w := serve(r, "GET", "/", nil)
		assert.Equal(t, tc.status, w.Code)
		assert.JSONEq(t, tc.body, w.Body.String())
	}
}

func TestCorsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CorsMiddleware(&CorsConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST"},
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "OPTIONS", "/x", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, "GET", "/x", http.Header{"Origin": {"http://evil.test"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.1, Burst: 1}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "GET", "/x", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "GET", "/x", nil).Code)
}
