package models

import "time"

type CreateGroupParams struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// CreateInviteParams mints an invite link. TTLHours defaults to the service
// default when zero; Email, when present, also mails the invite out.
type CreateInviteParams struct {
	TTLHours int    `json:"ttl_hours"`
	Email    string `json:"email"`
}

type InviteCreatedResponse struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
