package handler

import (
	"petities/internal/petition/models"
)

// PetitionResponse is the public view of a petition, including the signing
// requirements its type imposes so clients know which profile fields to ask
// for.
type PetitionResponse struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	Slug         string                `json:"slug,omitempty"`
	Requirements *RequirementsResponse `json:"requirements,omitempty"`
}

// RequirementsResponse describes the policy-gated profile requirements.
type RequirementsResponse struct {
	FullAddress bool    `json:"full_address"`
	BornAt      bool    `json:"born_at"`
	MinimumAge  *int    `json:"minimum_age,omitempty"`
	BirthCity   bool    `json:"birth_city"`
	CountryCode *string `json:"country_code,omitempty"`
}

// FromPetition maps a petition onto its public view.
func FromPetition(p *models.Petition) PetitionResponse {
	resp := PetitionResponse{
		ID:   p.ID,
		Name: p.Name,
		Slug: p.Slug,
	}
	if t := p.Type; t != nil {
		resp.Requirements = &RequirementsResponse{
			FullAddress: t.RequireFullAddress,
			BornAt:      t.RequireBornAt,
			MinimumAge:  t.RequiredMinimumAge,
			BirthCity:   t.RequireBirthCity,
			CountryCode: t.CountryCode,
		}
	}
	return resp
}
