package contact

import "errors"

var (
	ErrContactExists    = errors.New("contact already exists for this wallet address")
	ErrContactNotFound  = errors.New("contact not found")
	ErrBadAddress       = errors.New("wallet address is not usable")
	ErrSearchSuperseded = errors.New("search superseded by a newer query")
)
