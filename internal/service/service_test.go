package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/vidtube/internal/models"
	"github.com/Skotchmaster/vidtube/internal/repo"
)

type fakeUploader struct {
	url string
	err error

	calls []string
}

func (f *fakeUploader) UploadFile(_ context.Context, localPath string) (string, error) {
	f.calls = append(f.calls, localPath)
	return f.url, f.err
}

// failSecondUploader succeeds for the avatar and fails for the cover image.
type failSecondUploader struct {
	n int
}

func (f *failSecondUploader) UploadFile(_ context.Context, _ string) (string, error) {
	f.n++
	if f.n > 1 {
		return "", errors.New("upload rejected")
	}
	return "https://media.test/avatar.png", nil
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Subscription{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Repo: repo.GormRepo{
			DB:            initTestDB(t),
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		Media: &fakeUploader{url: "https://media.test/object.png"},
	}
}

func registerTestUser(t *testing.T, svc *AuthService, username, email, password string) *models.User {
	t.Helper()

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Test User",
		Email:      email,
		Username:   username,
		Password:   password,
		AvatarPath: "/tmp/avatar.png",
	})
	require.NoError(t, err)
	return user
}
