package models

import "testing"

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"0x70478DBB02b4026437E5015A0B4798c99E04C564", true},
		{"0x70478dbb02b4026437e5015a0b4798c99e04c564", true},
		{"0x70478DBB02B4026437E5015A0B4798C99E04C564", true},
		{"70478DBB02b4026437E5015A0B4798c99E04C564", false},   // missing 0x
		{"0x70478DBB02b4026437E5015A0B4798c99E04C56", false},  // 39 digits
		{"0x70478DBB02b4026437E5015A0B4798c99E04C5644", false}, // 41 digits
		{"0x70478DBB02b4026437E5015A0B4798c99E04C56G", false}, // non-hex
		{"", false},
		{"0x", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidAddress(tt.input); got != tt.expected {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("0x70478DBB02b4026437E5015A0B4798c99E04C564")
	want := "0x70478dbb02b4026437e5015a0b4798c99e04c564"
	if got != want {
		t.Errorf("NormalizeAddress = %q, want %q", got, want)
	}
}

func TestMaskAddress(t *testing.T) {
	got := MaskAddress("0x70478dbb02b4026437e5015a0b4798c99e04c564")
	want := "0x7047…c564"
	if got != want {
		t.Errorf("MaskAddress = %q, want %q", got, want)
	}
	if MaskAddress("0xshort") != "0xshort" {
		t.Error("short inputs pass through unchanged")
	}
}
