package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is a provider's subscription tier.
type PlanTier string

const (
	PlanFree    PlanTier = "FREE"
	PlanPro     PlanTier = "PRO"
	PlanPremium PlanTier = "PREMIUM"
)

// DefaultRadiusMiles is the service radius assigned to imported providers
// when the row does not specify one.
const DefaultRadiusMiles = 15

// Provider is a vendor business listing in the marketplace. The import
// pipeline only ever creates providers; duplicates by business name and
// postcode are skipped, never merged.
type Provider struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	BusinessName string    `json:"businessName"`
	Description  string    `json:"description,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Website      string    `json:"website,omitempty"`
	Postcode     string    `json:"postcode"`
	City         string    `json:"city,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RadiusMiles  int       `json:"radiusMiles"`
	Plan         PlanTier  `json:"plan"`
	Published    bool      `json:"published"`
	Verified     bool      `json:"verified"`
	Categories   []string  `json:"categories,omitempty"`
	CultureTags  []string  `json:"cultureTags,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Category is a vendor service taxonomy entry (photographers, caterers...).
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// City is a serviceable location.
type City struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Region    string    `json:"region,omitempty"`
	County    string    `json:"county,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CultureTag is a cultural-specialty taxonomy label ("South Asian",
// "Caribbean") used to filter vendors.
type CultureTag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
