package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the verified caller identity extracted from the external
// identity provider's access token. Investor is a platform-level flag,
// independent of any workspace membership.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Name     string
	Investor bool
}

// Profile mirrors the identity provider's user record for display purposes
// (team rosters, founder contact on matches).
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
