package group

import "errors"

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExpired  = errors.New("invite has expired")
	ErrBadInviteCode  = errors.New("invite code is not valid")
	ErrAlreadyMember  = errors.New("user is already a member of this group")
	ErrNotMember      = errors.New("user is not a member of this group")
)
