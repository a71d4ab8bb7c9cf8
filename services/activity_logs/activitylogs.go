package activitylogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"net"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/sqlc-dev/pqtype"
)

// AuditEntry is one recorded sensitive action: a login, a wallet close, a
// treasury change. UserID is nil for unauthenticated requests.
type AuditEntry struct {
	ID        int64           `db:"id" json:"id"`
	UserID    *int64          `db:"user_id" json:"user_id,omitempty"`
	Action    string          `db:"action" json:"action"`
	Resource  string          `db:"resource" json:"resource"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	IPAddress string          `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent string          `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type CreateAuditEntryParams struct {
	UserID    *int64
	Action    string
	Resource  string
	Metadata  json.RawMessage
	IPAddress string
	UserAgent string
}

type ActivityLog struct {
	store *db.Store
}

func NewActivityLog(store *db.Store) *ActivityLog {
	return &ActivityLog{
		store: store,
	}
}

const auditColumns = `id, user_id, action, resource, metadata,
       COALESCE(host(ip_address), '') AS ip_address, COALESCE(user_agent, '') AS user_agent, created_at`

func (a *ActivityLog) Create(ctx context.Context, params CreateAuditEntryParams) (*AuditEntry, error) {
	metadata := pqtype.NullRawMessage{}
	if len(params.Metadata) > 0 {
		metadata = pqtype.NullRawMessage{RawMessage: params.Metadata, Valid: true}
	}

	var entry AuditEntry
	err := a.store.GetContext(ctx, &entry, `
		INSERT INTO activity_logs (user_id, action, resource, metadata, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+auditColumns,
		toNullInt64(params.UserID),
		params.Action,
		params.Resource,
		metadata,
		toInet(params.IPAddress),
		toNullString(params.UserAgent),
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (a *ActivityLog) GetByUser(ctx context.Context, userID int64, limit, offset int32) ([]AuditEntry, error) {
	entries := []AuditEntry{}
	err := a.store.SelectContext(ctx, &entries, `
		SELECT `+auditColumns+`
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	return entries, err
}

func (a *ActivityLog) GetRecent(ctx context.Context, limit, offset int32) ([]AuditEntry, error) {
	entries := []AuditEntry{}
	err := a.store.SelectContext(ctx, &entries, `
		SELECT `+auditColumns+`
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	return entries, err
}

// ActiveUserCount counts distinct authenticated users seen since the cutoff.
func (a *ActivityLog) ActiveUserCount(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := a.store.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT user_id)
		FROM activity_logs
		WHERE user_id IS NOT NULL AND created_at >= $1`,
		since,
	)
	return count, err
}

// DeleteOlderThan prunes entries past the retention window. Returns the
// number of rows removed.
func (a *ActivityLog) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := a.store.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Helper functions
func toNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toInet(ip string) pqtype.Inet {
	if ip == "" {
		return pqtype.Inet{Valid: false}
	}

	// Try parsing as CIDR (e.g., "192.168.1.0/24")
	if _, ipNet, err := net.ParseCIDR(ip); err == nil {
		return pqtype.Inet{
			IPNet: *ipNet,
			Valid: true,
		}
	}

	// Try parsing as a single IP address (e.g., "192.168.1.1")
	if parsedIP := net.ParseIP(ip); parsedIP != nil {
		// Convert to a CIDR with full mask (/32 for IPv4, /128 for IPv6)
		var mask net.IPMask
		if parsedIP.To4() != nil {
			mask = net.CIDRMask(32, 32) // IPv4
		} else {
			mask = net.CIDRMask(128, 128) // IPv6
		}
		ipNet := &net.IPNet{
			IP:   parsedIP,
			Mask: mask,
		}
		return pqtype.Inet{
			IPNet: *ipNet,
			Valid: true,
		}
	}

	// Invalid IP or CIDR, return invalid
	return pqtype.Inet{Valid: false}
}
