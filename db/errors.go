package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	DuplicateEntry pq.ErrorCode = "23505"
	EntryTooLong   pq.ErrorCode = "22001"
	ForeignKeyGone pq.ErrorCode = "23503"
)

// IsDuplicate reports whether err is a Postgres unique-violation error
func IsDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == DuplicateEntry
	}
	return false
}
