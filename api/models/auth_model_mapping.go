package models

import (
	user_service "github.com/WeSplit-io/WeSplit-Backend/services/user"
)

func ToUserResponse(user *user_service.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		PhoneNumber:   user.PhoneNumber,
		WalletAddress: user.WalletAddress,
		AvatarURL:     user.AvatarURL,
		Verified:      user.Verified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
