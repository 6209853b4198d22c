package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username      string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email         string    `gorm:"uniqueIndex;not null"     json:"email"`
	FullName      string    `gorm:"not null"                 json:"fullName"`
	PasswordHash  string    `gorm:"not null"                 json:"-"`
	AvatarURL     string    `gorm:"not null"                 json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	// Single active session per user: sha256 of the current refresh JWT,
	// empty when logged out.
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Subscription links a follower to a channel. This service only reads the
// table for the channel-profile aggregation.
type Subscription struct {
	ID           uint      `gorm:"primaryKey"                                      json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sub_channel"  json:"subscriberId"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_sub_channel" json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is the aggregation result for GET /c/:username.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	FullName                  string    `json:"fullName"`
	Username                  string    `json:"username"`
	Email                     string    `json:"email"`
	AvatarURL                 string    `json:"avatar"`
	CoverImageURL             string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}
