package models

type AddContactParams struct {
	Name          string `json:"name" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
	Email         string `json:"email"`
}
