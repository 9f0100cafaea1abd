package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Username  *string   `json:"username,omitempty"`
	Email     *string   `json:"email,omitempty"`
	ENS       *string   `json:"ens,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the subset of user fields attached to admin request listings.
type UserSummary struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	ENS      *string `json:"ens,omitempty"`
}

// DisplayName picks the best human-readable handle for notifications.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.ENS != nil && *u.ENS != "" {
		return *u.ENS
	}
	return "Unknown"
}
