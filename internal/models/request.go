package models

import (
	"time"

	"github.com/google/uuid"
)

// Request statuses, shared by verification and cash requests.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELED"
)

// Verification kinds
const (
	KindPerson      = "PERSON"
	KindInstitution = "INSTITUTION"
)

// Cash directions
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

func IsValidKind(k string) bool {
	return k == KindPerson || k == KindInstitution
}

func IsValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// TransitionPolicy names the status transition guard applied on updates.
//
// PolicyPermissive reproduces the legacy behavior: any recognized status is
// accepted from any current state, including terminal back to PENDING.
// PolicyStrict enforces the declared lifecycle: PENDING is initial,
// APPROVED/REJECTED/CANCELED are terminal and cannot be left.
type TransitionPolicy string

const (
	PolicyPermissive TransitionPolicy = "permissive"
	PolicyStrict     TransitionPolicy = "strict"
)

// Valid strict transitions: from -> []to
var strictTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected, StatusCanceled},
	StatusApproved: {},
	StatusRejected: {},
	StatusCanceled: {},
}

func (p TransitionPolicy) Allows(from, to string) bool {
	if !IsValidStatus(to) {
		return false
	}
	if p != PolicyStrict {
		return true
	}
	allowed, ok := strictTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidTransitionPolicy(p string) bool {
	return TransitionPolicy(p) == PolicyPermissive || TransitionPolicy(p) == PolicyStrict
}

type VerificationRequest struct {
	ID        uuid.UUID      `json:"id"`
	Address   string         `json:"address"`
	Kind      string         `json:"kind"` // PERSON / INSTITUTION
	Fields    map[string]any `json:"fields"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// VerificationWithUser embeds VerificationRequest and adds the owning user's
// summary for admin listings.
type VerificationWithUser struct {
	VerificationRequest
	User *UserSummary `json:"user,omitempty"`
}

type CashRequest struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Direction string    `json:"direction"` // IN / OUT
	Token     string    `json:"token"`
	AmountWei string    `json:"amountWei"` // decimal integer string, fixed-point
	BankRef   *string   `json:"bankRef,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CashWithUser struct {
	CashRequest
	User *UserSummary `json:"user,omitempty"`
}
