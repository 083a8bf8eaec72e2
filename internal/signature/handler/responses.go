package handler

import (
	"time"

	"petities/internal/signature/models"
)

// SignatureResponse is the public view of a signature. The confirmation-link
// token and the audit fields never leave the server.
type SignatureResponse struct {
	ID                 int64      `json:"id"`
	PetitionID         int64      `json:"petition_id"`
	Name               string     `json:"name"`
	City               string     `json:"city,omitempty"`
	Function           string     `json:"function,omitempty"`
	Confirmed          bool       `json:"confirmed"`
	Visible            bool       `json:"visible"`
	SubscribeToUpdates bool       `json:"subscribe_to_updates"`
	SignedAt           time.Time  `json:"signed_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
}

// ViolationsResponse is the envelope for field-level validation failures.
type ViolationsResponse struct {
	Errors models.Violations `json:"errors"`
}

// FromSignature maps a signature onto its public view.
func FromSignature(sig *models.Signature) SignatureResponse {
	return SignatureResponse{
		ID:                 sig.ID,
		PetitionID:         sig.PetitionID,
		Name:               sig.Name,
		City:               sig.City,
		Function:           sig.Function,
		Confirmed:          sig.Confirmed,
		Visible:            sig.Visible,
		SubscribeToUpdates: sig.SubscribeToUpdates,
		SignedAt:           sig.SignedAt,
		ConfirmedAt:        sig.ConfirmedAt,
	}
}

// FromSignatures maps a list of signatures onto their public views.
func FromSignatures(sigs []*models.Signature) []SignatureResponse {
	out := make([]SignatureResponse, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, FromSignature(sig))
	}
	return out
}
