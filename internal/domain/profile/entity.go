package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents the profiles table, the read model the auth provider
// maintains for every account. This service only reads it for
// notification addressing.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}
