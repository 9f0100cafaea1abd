package auth

import (
	"testing"
	"time"
)

const admin = "0x70478DBB02b4026437E5015A0B4798c99E04C564"

func TestStaticAddressGate(t *testing.T) {
	gate := NewStaticAddressGate(admin)

	tests := []struct {
		name     string
		address  string
		expected bool
	}{
		{"exact match", admin, true},
		{"lowercase variant rejected", "0x70478dbb02b4026437e5015a0b4798c99e04c564", false},
		{"other address", "0x0000000000000000000000000000000000000001", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Authorize(Caller{Address: tt.address}); got != tt.expected {
				t.Errorf("Authorize(%q) = %v, want %v", tt.address, got, tt.expected)
			}
		})
	}
}

func TestStaticAddressGateUnconfigured(t *testing.T) {
	gate := NewStaticAddressGate("")
	if gate.Authorize(Caller{Address: ""}) {
		t.Error("empty admin address must never authorize")
	}
}

func TestTokenGate(t *testing.T) {
	const secret = "test-secret"
	gate := NewTokenGate(secret, admin)

	token, err := GenerateAdminToken(secret, admin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	if !gate.Authorize(Caller{Token: token}) {
		t.Error("valid token rejected")
	}

	// The asserted address is irrelevant in token mode.
	if !gate.Authorize(Caller{Address: "0xdeadbeef", Token: token}) {
		t.Error("token mode must ignore the asserted address")
	}

	if gate.Authorize(Caller{Token: ""}) {
		t.Error("missing token authorized")
	}

	wrongSecret, err := GenerateAdminToken("other-secret", admin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if gate.Authorize(Caller{Token: wrongSecret}) {
		t.Error("token signed with wrong secret authorized")
	}

	wrongSubject, err := GenerateAdminToken(secret, "0x0000000000000000000000000000000000000001", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if gate.Authorize(Caller{Token: wrongSubject}) {
		t.Error("token for a different subject authorized")
	}

	expired, err := GenerateAdminToken(secret, admin, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if gate.Authorize(Caller{Token: expired}) {
		t.Error("expired token authorized")
	}
}
