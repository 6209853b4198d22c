package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkg_hash "github.com/Skotchmaster/vidtube/pkg/hash"
	"github.com/Skotchmaster/vidtube/pkg/logging"

	"github.com/Skotchmaster/vidtube/internal/models"
	"github.com/Skotchmaster/vidtube/internal/search"
)

func (h *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, nil
}

func (h *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password")

	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: new password and confirmation do not match", ErrValidation)
	}

	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, oldPassword) {
		l.Warn("change_password_rejected", "status", 400, "reason", "invalid old password")
		return fmt.Errorf("%w: invalid old password", ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := h.Repo.UpdatePassword(ctx, userID, pwHash); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	l.Info("password_changed")
	return nil
}

func (h *AuthService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.User, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	if err := h.Repo.UpdateAccountDetails(ctx, userID, fullName, email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	h.indexChannel(ctx, user)
	return user, nil
}

func (h *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	return h.updateImage(ctx, userID, localPath, "avatar", h.Repo.UpdateAvatar)
}

func (h *AuthService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	return h.updateImage(ctx, userID, localPath, "cover image", h.Repo.UpdateCoverImage)
}

func (h *AuthService) updateImage(ctx context.Context, userID uuid.UUID, localPath, kind string, update func(context.Context, uuid.UUID, string) error) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_image", "kind", kind)

	if localPath == "" {
		return nil, fmt.Errorf("%w: %s file is required", ErrValidation, kind)
	}

	url, err := h.Media.UploadFile(ctx, localPath)
	if err != nil || url == "" {
		l.Error("upload_failed", "error", err)
		return nil, fmt.Errorf("%w: %s upload failed", ErrInternal, kind)
	}

	// The previous hosted object is not removed.
	if err := update(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	h.indexChannel(ctx, user)
	return user, nil
}

func (h *AuthService) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*models.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is missing", ErrValidation)
	}

	profile, err := h.Repo.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: channel does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return profile, nil
}

func (h *AuthService) SearchChannels(ctx context.Context, query string, from, size int) (int64, []search.ChannelDoc, error) {
	if h.Search == nil {
		return 0, nil, fmt.Errorf("%w: search is not configured", ErrInternal)
	}
	q := search.NormalizeQuery(query)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	total, docs, err := h.Search.Search(ctx, q, from, size)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return total, docs, nil
}
