package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vidtube/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func signAccessToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()

	claims := tokens.AccessClaims{
		Username: "streamer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, decorate func(*http.Request)) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return c, handler(c)
}

func TestRequireAuth_AcceptsCookie(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)
	token := signAccessToken(t, "user-1", time.Now().Add(time.Minute))

	c, err := runMiddleware(t, mw.RequireAuth, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Get("user_id"))
	assert.Equal(t, "streamer", c.Get("username"))
}

func TestRequireAuth_AcceptsBearerHeader(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)
	token := signAccessToken(t, "user-2", time.Now().Add(time.Minute))

	c, err := runMiddleware(t, mw.RequireAuth, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})
	require.NoError(t, err)
	assert.Equal(t, "user-2", c.Get("user_id"))
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)

	_, err := runMiddleware(t, mw.RequireAuth, nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)
	token := signAccessToken(t, "user-3", time.Now().Add(-time.Minute))

	_, err := runMiddleware(t, mw.RequireAuth, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)

	c, err := runMiddleware(t, mw.OptionalAuth, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Get("user_id"))
}

func TestOptionalAuth_ResolvesIdentity(t *testing.T) {
	t.Parallel()

	mw := NewSimpleAuth(testSecret)
	token := signAccessToken(t, "user-4", time.Now().Add(time.Minute))

	c, err := runMiddleware(t, mw.OptionalAuth, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	require.NoError(t, err)
	assert.Equal(t, "user-4", c.Get("user_id"))
}
