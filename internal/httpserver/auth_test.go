package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vidtube/internal/transport"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	resp := env.register("Test_User", "test@example.com")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.Success)

	user, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test_user", user["username"])
	assert.Equal(t, "https://media.test/object.png", user["avatar"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "refreshToken")

	// Same username again: conflict.
	_, c := env.doRegisterRequest(registerFields("test_user", "other@example.com"), map[string]string{"avatar": "avatar.png"})
	err := env.A.Register(c)
	he, ok2 := err.(*echo.HTTPError)
	require.True(t, ok2, "expected HTTPError")
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestRegister_MissingAvatar(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doRegisterRequest(registerFields("test_user", "test@example.com"), nil)
	err := env.A.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	fields := registerFields("test_user", "test@example.com")
	fields["password"] = "  "
	_, c := env.doRegisterRequest(fields, map[string]string{"avatar": "avatar.png"})

	err := env.A.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRegister_BadEmail(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doRegisterRequest(registerFields("test_user", "not-an-email"), map[string]string{"avatar": "avatar.png"})
	err := env.A.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLogin_SetsCookiesAndReturnsPair(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "test@example.com")

	rec, data := env.login("test_user", "password")
	require.NotEmpty(t, data.AccessToken)
	require.NotEmpty(t, data.RefreshToken)
	require.NotNil(t, data.User)
	assert.Equal(t, "test_user", data.User.Username)

	cookieNames := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		cookieNames[ck.Name] = true
		assert.True(t, ck.HttpOnly, "%s must be httpOnly", ck.Name)
		assert.True(t, ck.Secure, "%s must be secure", ck.Name)
	}
	assert.True(t, cookieNames["accessToken"])
	assert.True(t, cookieNames["refreshToken"])

	// Credential fields never appear in the serialized body.
	body := rec.Body.String()
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, `"password"`)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "test@example.com")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": "test_user",
		"password": "wrong",
	})
	err := env.A.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogin_MissingIdentifier(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"password": "password",
	})
	err := env.A.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRefresh_FromCookie(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "test@example.com")
	_, data := env.login("test_user", "password")

	ck := &http.Cookie{Name: "refreshToken", Value: data.RefreshToken}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/refresh-token", nil, ck)
	require.NoError(t, env.A.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data transport.TokenPairResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.NotEmpty(t, resp.Data.RefreshToken)
	assert.NotEqual(t, data.RefreshToken, resp.Data.RefreshToken)

	// The spent token no longer refreshes.
	_, c2 := env.doJSONRequest(http.MethodPost, "/api/v1/users/refresh-token", nil, ck)
	err := env.A.Refresh(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRefresh_FromBody(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "test@example.com")
	_, data := env.login("test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/refresh-token", map[string]string{
		"refreshToken": data.RefreshToken,
	})
	require.NoError(t, env.A.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	err := env.A.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogOut_ClearsSessionAndCookies(t *testing.T) {
	env := newTestEnv(t)
	env.register("test_user", "test@example.com")
	_, data := env.login("test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/logout", nil)
	asUser(c, data.User.ID.String())
	require.NoError(t, env.A.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, ck := range rec.Result().Cookies() {
		assert.Empty(t, ck.Value, "cookie %s must be cleared", ck.Name)
	}

	// The refresh token from before logout is dead.
	ckRefresh := &http.Cookie{Name: "refreshToken", Value: data.RefreshToken}
	_, c2 := env.doJSONRequest(http.MethodPost, "/api/v1/users/refresh-token", nil, ckRefresh)
	err := env.A.Refresh(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
