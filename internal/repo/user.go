package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/vidtube/internal/models"
)

var ErrStaleRefreshToken = errors.New("stale refresh token")

func (r *GormRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", strings.ToLower(username), email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) Create(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// SetRefreshToken overwrites the single session slot. Used on login, where
// the previous session is implicitly revoked.
func (r *GormRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", tokenHash).Error
}

// RotateRefreshToken swaps the stored token only if it still matches the one
// being spent. A zero-row update means the token was already rotated or
// cleared, so the presented token must be treated as reused.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, oldHash).
		Update("refresh_token", newHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRefreshToken
	}
	return nil
}

func (r *GormRepo) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", "").Error
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *GormRepo) UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"full_name": fullName, "email": email}).Error
}

func (r *GormRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("avatar_url", url).Error
}

func (r *GormRepo) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("cover_image_url", url).Error
}
