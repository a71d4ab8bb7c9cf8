package group

import "time"

type Group struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatorID int64     `db:"creator_id" json:"creator_id"`
	Icon      string    `db:"icon" json:"icon,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Member struct {
	GroupID  int64     `db:"group_id" json:"group_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type Invite struct {
	ID        int64     `db:"id" json:"id"`
	GroupID   int64     `db:"group_id" json:"group_id"`
	CreatedBy int64     `db:"created_by" json:"created_by"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InvitePreview is what a join link shows before the user commits.
type InvitePreview struct {
	Code        string    `db:"-" json:"code"`
	GroupID     int64     `db:"group_id" json:"group_id"`
	GroupName   string    `db:"group_name" json:"group_name"`
	MemberCount int       `db:"member_count" json:"member_count"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
}
