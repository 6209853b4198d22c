package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/vidtube/internal/models"
)

// ChannelProfile resolves a public channel page: the user row plus follower
// counts joined from subscriptions. viewerID may be uuid.Nil for anonymous
// requests, in which case IsSubscribed stays false.
func (r *GormRepo) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*models.ChannelProfile, error) {
	db := r.DB.WithContext(ctx)

	var user models.User
	if err := db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		return nil, err
	}

	var subscribers int64
	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", user.ID).
		Count(&subscribers).Error; err != nil {
		return nil, err
	}

	var subscribedTo int64
	if err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", user.ID).
		Count(&subscribedTo).Error; err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != uuid.Nil {
		var n int64
		if err := db.Model(&models.Subscription{}).
			Where("channel_id = ? AND subscriber_id = ?", user.ID, viewerID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		isSubscribed = n > 0
	}

	return &models.ChannelProfile{
		ID:                        user.ID,
		FullName:                  user.FullName,
		Username:                  user.Username,
		Email:                     user.Email,
		AvatarURL:                 user.AvatarURL,
		CoverImageURL:             user.CoverImageURL,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}
