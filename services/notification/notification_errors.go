package service

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrActionAlreadyTaken   = errors.New("action already recorded for this notification")
)
