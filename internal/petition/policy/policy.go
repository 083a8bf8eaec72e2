// Package policy exposes the validation gates a petition's configuration
// activates. Predicates are pure reads over a configuration snapshot so the
// validator stays free of conditional plumbing.
package policy

import "petities/internal/petition/models"

// Policy answers which optional signature requirements are active for one
// petition. Every predicate returns false when the petition or its type is
// absent: a signature without a petition must never crash validation, it just
// has no conditional requirements.
type Policy struct {
	petition *models.Petition
}

// For builds a Policy over a (possibly nil) petition snapshot.
func For(p *models.Petition) Policy {
	return Policy{petition: p}
}

func (p Policy) configured() *models.PetitionType {
	if p.petition == nil {
		return nil
	}
	return p.petition.Type
}

// RequiresFullAddress reports whether city, street and street number are required.
func (p Policy) RequiresFullAddress() bool {
	t := p.configured()
	return t != nil && t.RequireFullAddress
}

// RequiresBornAt reports whether a birth date must be supplied.
func (p Policy) RequiresBornAt() bool {
	t := p.configured()
	return t != nil && t.RequireBornAt
}

// RequiresMinimumAge reports whether a minimum signer age applies, and which.
func (p Policy) RequiresMinimumAge() (int, bool) {
	t := p.configured()
	if t == nil || t.RequiredMinimumAge == nil {
		return 0, false
	}
	return *t.RequiredMinimumAge, true
}

// RequiresBirthCity reports whether the signer's birth city is required.
func (p Policy) RequiresBirthCity() bool {
	t := p.configured()
	return t != nil && t.RequireBirthCity
}

// RequiresCountry reports whether country-specific validation applies, and for
// which country.
func (p Policy) RequiresCountry() (string, bool) {
	t := p.configured()
	if t == nil || t.CountryCode == nil || *t.CountryCode == "" {
		return "", false
	}
	return *t.CountryCode, true
}
