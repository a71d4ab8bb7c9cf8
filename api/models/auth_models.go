package models

import (
	"time"

	_ "github.com/go-playground/validator/v10"
)

type UserLoginParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterUserParams struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required,min=8"`
}

type UpdateProfileParams struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type WalletAddressParams struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

type PushTokenParams struct {
	ExpoPushToken string `json:"expo_push_token" binding:"required"`
	Platform      string `json:"platform"`
}

type UserResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UserWithToken struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

const (
	ADMIN = "admin"
	USER  = "user"
)
