package models

type NotificationActionParams struct {
	Action string `json:"action" binding:"required"`
}
