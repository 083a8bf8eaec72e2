package models

import "time"

// PetitionType is read-only configuration owned by a petition. It decides which
// optional signature validations are active. Signatures reference it through
// their petition and never mutate it.
type PetitionType struct {
	ID                 int64
	Name               string
	RequireFullAddress bool
	RequireBornAt      bool
	RequiredMinimumAge *int
	RequireBirthCity   bool
	// CountryCode non-nil means country-specific validation applies.
	CountryCode *string
}

// Petition is the entity being signed. It owns many signatures and at most one
// PetitionType.
type Petition struct {
	ID        int64
	Name      string
	Slug      string
	Type      *PetitionType
	CreatedAt time.Time
	UpdatedAt time.Time
}
