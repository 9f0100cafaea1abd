// Package compliance derives a display status from on-chain ComplianceNFT
// state. The chain is read-only here; minting and revocation happen outside
// this service.
package compliance

import (
	"context"
	"math/big"
	"time"
)

type Status string

const (
	StatusUnverified Status = "UNVERIFIED"
	StatusProcessing Status = "PROCESSING"
	StatusVerified   Status = "VERIFIED"
	StatusExpired    Status = "EXPIRED"
)

// ExpiryWarningWindow is how close to expiry a VERIFIED holder gets the
// renewal advisory.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// Snapshot is the raw oracle state for one address.
type Snapshot struct {
	TokenID     *big.Int `json:"tokenId"`
	IsCompliant bool     `json:"isCompliant"`
	ValidUntil  int64    `json:"validUntil"` // unix seconds, 0 when never set
}

// Oracle reads ComplianceNFT state for an address.
type Oracle interface {
	Snapshot(ctx context.Context, address string) (*Snapshot, error)
}

// DeriveStatus computes the four-value display status:
// no token -> UNVERIFIED; token present but not compliant with a recorded
// validity -> EXPIRED; compliant -> VERIFIED; anything else -> PROCESSING.
func DeriveStatus(s Snapshot) Status {
	if s.TokenID == nil || s.TokenID.Sign() == 0 {
		return StatusUnverified
	}
	if !s.IsCompliant && s.ValidUntil > 0 {
		return StatusExpired
	}
	if s.IsCompliant {
		return StatusVerified
	}
	return StatusProcessing
}

// ExpiresSoon reports the advisory renewal flag: VERIFIED and less than
// ExpiryWarningWindow left. Non-blocking, display only.
func ExpiresSoon(s Snapshot, now time.Time) bool {
	if DeriveStatus(s) != StatusVerified || s.ValidUntil == 0 {
		return false
	}
	return time.Unix(s.ValidUntil, 0).Sub(now) < ExpiryWarningWindow
}
