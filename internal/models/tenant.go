package models

import "time"

// MarketplaceType controls which scoring features a tenant gets.
type MarketplaceType string

const (
	MarketplaceStandard MarketplaceType = "STANDARD"
	MarketplaceAthletic MarketplaceType = "ATHLETIC"
)

// Tenant is a read-only snapshot of a marketplace tenant. Only the
// marketplace type matters to the engine: athletic tenants get skill-transfer
// translation inside the skill-match term.
type Tenant struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	MarketplaceType MarketplaceType `db:"marketplace_type" json:"marketplace_type"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// AthleticEnabled reports whether skill-transfer mappings apply.
func (t *Tenant) AthleticEnabled() bool {
	return t != nil && t.MarketplaceType == MarketplaceAthletic
}
