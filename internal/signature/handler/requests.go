package handler

import (
	"time"

	"petities/internal/signature/models"
	dErrors "petities/pkg/domain-errors"
)

// birthDateLayout is the wire format for the birth_date field.
const birthDateLayout = "2006-01-02"

// SignatureRequest is the HTTP request body for creating or updating a
// signature. Field-level policy checks (required address, minimum age) happen
// in the service and come back as a violations map; Validate only rejects
// bodies that cannot be interpreted at all.
type SignatureRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Street             string `json:"street"`
	StreetNumber       string `json:"street_number"`
	StreetNumberSuffix string `json:"street_number_suffix"`
	PostalCode         string `json:"postal_code"`
	City               string `json:"city"`
	Function           string `json:"function"`
	CountryCode        string `json:"country_code"`
	BirthDate          string `json:"birth_date"`
	BirthCity          string `json:"birth_city"`
	DutchCitizen       bool   `json:"dutch_citizen"`
	SubscribeToUpdates bool   `json:"subscribe_to_updates"`
	Visible            bool   `json:"visible"`

	parsedBirthDate *time.Time
}

// Validate parses the structured fields of the request.
func (r *SignatureRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.BirthDate != "" {
		t, err := time.Parse(birthDateLayout, r.BirthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "birth_date must be formatted as YYYY-MM-DD")
		}
		r.parsedBirthDate = &t
	}
	return nil
}

// Apply copies the request fields onto sig. Lifecycle fields are untouched;
// the service guards them regardless.
func (r *SignatureRequest) Apply(sig *models.Signature) {
	sig.Name = r.Name
	sig.Email = r.Email
	sig.Street = r.Street
	sig.StreetNumber = r.StreetNumber
	sig.StreetNumberSuffix = r.StreetNumberSuffix
	sig.PostalCode = r.PostalCode
	sig.City = r.City
	sig.Function = r.Function
	sig.CountryCode = r.CountryCode
	sig.BirthDate = r.parsedBirthDate
	sig.BirthCity = r.BirthCity
	sig.DutchCitizen = r.DutchCitizen
	sig.SubscribeToUpdates = r.SubscribeToUpdates
	sig.Visible = r.Visible
}
