package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/vidtube/internal/models"
	"github.com/Skotchmaster/vidtube/internal/repo"
	"github.com/Skotchmaster/vidtube/internal/service"
	"github.com/Skotchmaster/vidtube/internal/transport"
)

type fakeUploader struct {
	url string
}

func (f *fakeUploader) UploadFile(_ context.Context, _ string) (string, error) {
	return f.url, nil
}

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	A  *AuthHTTP
	DB *gorm.DB
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Subscription{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	svc := &service.AuthService{
		Repo: repo.GormRepo{
			DB:            db,
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		Media: &fakeUploader{url: "https://media.test/object.png"},
	}

	return &testEnv{
		T:  t,
		E:  echo.New(),
		A:  &AuthHTTP{Svc: svc},
		DB: db,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doRegisterRequest(fields map[string]string, files map[string]string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(env.T, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func registerFields(username, email string) map[string]string {
	return map[string]string{
		"fullName": "Test User",
		"email":    email,
		"username": username,
		"password": "password",
	}
}

func (env *testEnv) register(username, email string) transport.APIResponse {
	env.T.Helper()

	rec, c := env.doRegisterRequest(registerFields(username, email), map[string]string{"avatar": "avatar.png"})
	require.NoError(env.T, env.A.Register(c))
	require.Equal(env.T, http.StatusCreated, rec.Code)

	var resp transport.APIResponse
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (env *testEnv) login(username, password string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, transport.LoginResponse) {
	env.T.Helper()

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": username,
		"password": password,
	}, cookies...)
	require.NoError(env.T, env.A.Login(c))
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp struct {
		Data transport.LoginResponse `json:"data"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp.Data
}

// asUser marks the request context as authenticated, the way RequireAuth
// does after validating an access token.
func asUser(c echo.Context, id string) {
	c.Set("user_id", id)
}
