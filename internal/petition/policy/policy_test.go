package policy

import (
	"testing"

	"petities/internal/petition/models"
)

func TestPolicyNilSafety(t *testing.T) {
	t.Run("nil petition activates nothing", func(t *testing.T) {
		p := For(nil)
		if p.RequiresFullAddress() || p.RequiresBornAt() || p.RequiresBirthCity() {
			t.Fatal("nil petition must not activate any requirement")
		}
		if _, ok := p.RequiresMinimumAge(); ok {
			t.Fatal("nil petition must not require a minimum age")
		}
		if _, ok := p.RequiresCountry(); ok {
			t.Fatal("nil petition must not require a country")
		}
	})

	t.Run("petition without type activates nothing", func(t *testing.T) {
		p := For(&models.Petition{ID: 1})
		if p.RequiresFullAddress() || p.RequiresBornAt() || p.RequiresBirthCity() {
			t.Fatal("typeless petition must not activate any requirement")
		}
	})
}

func TestPolicyPredicates(t *testing.T) {
	age := 18
	country := "nl"
	p := For(&models.Petition{
		ID: 1,
		Type: &models.PetitionType{
			RequireFullAddress: true,
			RequireBornAt:      true,
			RequiredMinimumAge: &age,
			RequireBirthCity:   true,
			CountryCode:        &country,
		},
	})

	if !p.RequiresFullAddress() {
		t.Error("expected full address requirement")
	}
	if !p.RequiresBornAt() {
		t.Error("expected born-at requirement")
	}
	if !p.RequiresBirthCity() {
		t.Error("expected birth city requirement")
	}
	if got, ok := p.RequiresMinimumAge(); !ok || got != 18 {
		t.Errorf("RequiresMinimumAge() = %d, %v; want 18, true", got, ok)
	}
	if got, ok := p.RequiresCountry(); !ok || got != "nl" {
		t.Errorf("RequiresCountry() = %q, %v; want nl, true", got, ok)
	}

	t.Run("empty country code is inactive", func(t *testing.T) {
		empty := ""
		p := For(&models.Petition{ID: 2, Type: &models.PetitionType{CountryCode: &empty}})
		if _, ok := p.RequiresCountry(); ok {
			t.Error("empty country code must not activate country validation")
		}
	})
}
