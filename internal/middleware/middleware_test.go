package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apiError "storefront-builder/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyJWT(token string) (string, error) {
	if sub, ok := f[token]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupRouter(m *Auth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(quietLogger()))
	router.GET("/admin", m.AuthMiddleWare(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	router.GET("/internal", m.InternalAuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("db down"))
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Error(apiError.ErrPageNotFound)
	})
	return router
}

func serve(router *gin.Engine, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleWare(t *testing.T) {
	router := setupRouter(&Auth{Verifier: fakeVerifier{"good": "user-1"}})

	w := serve(router, "/admin", "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	w = serve(router, "/admin?token=good", "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/admin", "Bearer bad").Code)
}

func TestInternalAuthMiddleware(t *testing.T) {
	router := setupRouter(&Auth{InternalSecret: "s3cret"})

	assert.Equal(t, http.StatusOK, serve(router, "/internal", "Bearer s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/internal", "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/internal", "").Code)
}

func TestInternalAuthMiddleware_EmptySecretRejectsAll(t *testing.T) {
	router := setupRouter(&Auth{})

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/internal", "Bearer ").Code)
}

func TestErrorHandler(t *testing.T) {
	router := setupRouter(&Auth{})

	w := serve(router, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	w = serve(router, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Page not found"}`, w.Body.String())
}
