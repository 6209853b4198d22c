package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkg_hash "github.com/Skotchmaster/vidtube/pkg/hash"
	jwthelp "github.com/Skotchmaster/vidtube/pkg/jwt"
	"github.com/Skotchmaster/vidtube/pkg/logging"
	"github.com/Skotchmaster/vidtube/pkg/tokens"

	"github.com/Skotchmaster/vidtube/internal/events"
	"github.com/Skotchmaster/vidtube/internal/models"
	"github.com/Skotchmaster/vidtube/internal/repo"
	"github.com/Skotchmaster/vidtube/internal/search"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Uploader is the external media host: give it a local file, get back a
// hosted URL.
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

type AuthService struct {
	Repo   repo.GormRepo
	Media  Uploader
	Events *events.Producer
	Search *search.Channels
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type LoginResult struct {
	User *models.User
	TokenPair
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

func (h *AuthService) CreateAccessToken(user *models.User, accessExp time.Time) (string, error) {
	accessClaims := tokens.AccessClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}

	tokenAccess := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err := tokenAccess.SignedString(h.Repo.AccessSecret)
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

func (h *AuthService) CreateRefreshToken(id string, refreshExp time.Time) (string, error) {
	refreshClaims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        jwthelp.NewJTI(),
		},
	}

	tokenRefresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err := tokenRefresh.SignedString(h.Repo.RefreshSecret)
	if err != nil {
		return "", err
	}

	return refreshToken, nil
}

func (h *AuthService) newTokenPair(user *models.User) (*TokenPair, error) {
	accessExp := time.Now().Add(accessTokenTTL)
	accessToken, err := h.CreateAccessToken(user, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(refreshTokenTTL)
	refreshToken, err := h.CreateRefreshToken(user.ID.String(), refreshExp)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// IssueTokenPair signs a fresh access/refresh pair for the user and stores
// the refresh digest on the row, revoking any previous session.
func (h *AuthService) IssueTokenPair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	pair, err := h.newTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("%w: something went wrong while generating tokens", ErrInternal)
	}

	if err := h.Repo.SetRefreshToken(ctx, user.ID, jwthelp.Sha256Hex(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("%w: something went wrong while generating tokens", ErrInternal)
	}

	return pair, nil
}

func (h *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	for _, field := range []string{in.FullName, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
		}
	}

	if !emailRegex.MatchString(in.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	if _, err := h.Repo.FindByUsernameOrEmail(ctx, in.Username, in.Email); err == nil {
		return nil, fmt.Errorf("%w: user with email or username already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if in.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	avatarURL, err := h.Media.UploadFile(ctx, in.AvatarPath)
	if err != nil || avatarURL == "" {
		l.Error("avatar_upload_failed", "error", err)
		return nil, fmt.Errorf("%w: avatar file upload failed", ErrInternal)
	}

	coverURL := ""
	if in.CoverImagePath != "" {
		coverURL, err = h.Media.UploadFile(ctx, in.CoverImagePath)
		if err != nil {
			// Missing cover image is not an error, the profile just has none.
			l.Warn("cover_upload_failed", "error", err)
			coverURL = ""
		}
	}

	pwHash, err := pkg_hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user := models.User{
		Username:      strings.ToLower(in.Username),
		Email:         in.Email,
		FullName:      in.FullName,
		PasswordHash:  pwHash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	if err := h.Repo.Create(ctx, &user); err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	created, err := h.Repo.FindByID(ctx, user.ID)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "created user not readable", "error", err)
		return nil, fmt.Errorf("%w: something went wrong while registering a user", ErrInternal)
	}

	h.publishEvent(ctx, created.ID.String(), map[string]interface{}{
		"type":     "user_registered",
		"userId":   created.ID,
		"username": created.Username,
	})
	h.indexChannel(ctx, created)

	l.Info("user_registered", "username", created.Username)
	return created, nil
}

func (h *AuthService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(username) == "" && strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: username or email is required", ErrValidation)
	}

	user, err := h.Repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	pair, err := h.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	h.publishEvent(ctx, user.ID.String(), map[string]interface{}{
		"type":     "user_logged_in",
		"userId":   user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "username", user.Username)
	return &LoginResult{User: user, TokenPair: *pair}, nil
}

func (h *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := h.Repo.ClearRefreshToken(ctx, userID); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	h.publishEvent(ctx, userID.String(), map[string]interface{}{
		"type":   "user_logged_out",
		"userId": userID,
	})

	l.Info("logout_successful")
	return nil
}

// Refresh spends a refresh token for a new pair. Rotation is single-use: the
// stored digest is swapped with a conditional update, so a second spend of
// the same token loses the race and fails.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, h.Repo.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := h.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	oldHash := jwthelp.Sha256Hex(refreshToken)
	if user.RefreshToken == "" || user.RefreshToken != oldHash {
		l.Warn("refresh_rejected", "status", 401, "reason", "token reuse")
		return nil, fmt.Errorf("%w: refresh token is expired or used", ErrUnauthorized)
	}

	pair, err := h.newTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("%w: something went wrong while generating tokens", ErrInternal)
	}

	if err := h.Repo.RotateRefreshToken(ctx, user.ID, oldHash, jwthelp.Sha256Hex(pair.RefreshToken)); err != nil {
		if errors.Is(err, repo.ErrStaleRefreshToken) {
			return nil, fmt.Errorf("%w: refresh token is expired or used", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	l.Info("refresh_successful")
	return &LoginResult{User: user, TokenPair: *pair}, nil
}

func (h *AuthService) publishEvent(ctx context.Context, key string, event map[string]interface{}) {
	if h.Events == nil {
		return
	}
	if err := h.Events.PublishEvent(ctx, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "error", err)
	}
}

func (h *AuthService) indexChannel(ctx context.Context, user *models.User) {
	if h.Search == nil {
		return
	}
	doc := search.ChannelDoc{
		ID:        user.ID.String(),
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
	if err := h.Search.IndexChannel(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("channel_index_failed", "error", err)
	}
}
