package domain

import (
	"testing"
	"time"
)

func TestNormalizePostcode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ls1 1aa", "LS11AA"},
		{"LS1 1AA", "LS11AA"},
		{"  sw1a 2aa  ", "SW1A2AA"},
		{"M1 1AE", "M11AE"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePostcode(tt.in); got != tt.want {
			t.Errorf("NormalizePostcode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportTypeValid(t *testing.T) {
	valid := []ImportType{ImportProviders, ImportCategories, ImportCities, ImportCultureTags}
	for _, typ := range valid {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	for _, typ := range []ImportType{"", "bookings", "PROVIDERS"} {
		if typ.Valid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	active := Session{ExpiresAt: now.Add(time.Hour)}
	if active.Expired(now) {
		t.Error("session expiring in an hour should be active")
	}

	stale := Session{ExpiresAt: now.Add(-time.Minute)}
	if !stale.Expired(now) {
		t.Error("session past expiry should be expired")
	}

	unbounded := Session{}
	if unbounded.Expired(now) {
		t.Error("zero expiry means no expiry")
	}
}
