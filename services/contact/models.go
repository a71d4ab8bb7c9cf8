package contact

import "time"

type Contact struct {
	ID            int64     `db:"id" json:"id"`
	OwnerID       int64     `db:"owner_id" json:"owner_id"`
	Name          string    `db:"name" json:"name"`
	WalletAddress string    `db:"wallet_address" json:"wallet_address"`
	Email         string    `db:"email" json:"email,omitempty"`
	Favorite      bool      `db:"favorite" json:"favorite"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ShortAddress is the display fallback when a contact arrives from a bare
// profile link with no name attached.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
