package realtime

import "errors"

var (
	ErrClientGone   = errors.New("websocket client is gone")
	ErrQueueFull    = errors.New("websocket send queue is full")
	ErrNotPermitted = errors.New("not a member of this wallet")
)
