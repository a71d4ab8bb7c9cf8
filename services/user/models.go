package user_service

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PhoneNumber    string    `db:"phone_number" json:"phone_number,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	WalletAddress  string    `db:"wallet_address" json:"wallet_address,omitempty"`
	AvatarURL      string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Role           string    `db:"role" json:"role"`
	Verified       bool      `db:"verified" json:"verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PushToken is one device registration for Expo push delivery.
type PushToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"expo_push_token" json:"expo_push_token"`
	Platform  string    `db:"platform" json:"platform,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
