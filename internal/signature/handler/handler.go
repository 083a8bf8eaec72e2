package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"petities/internal/platform/middleware"
	"petities/internal/signature/models"
	"petities/internal/signature/service"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/httputil"
)

// Service defines the interface for signature lifecycle operations.
type Service interface {
	Create(ctx context.Context, sig *models.Signature, meta service.RequestMeta) (models.Violations, error)
	Update(ctx context.Context, petitionID, id int64, apply func(*models.Signature)) (*models.Signature, models.Violations, error)
	Confirm(ctx context.Context, key string, meta service.RequestMeta) (*models.Signature, error)
	ListVisible(ctx context.Context, petitionID int64) ([]*models.Signature, error)
}

// Handler wires signature endpoints to the signature service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a signature handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts signature endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/petitions/{petitionID}/signatures", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Put("/{signatureID}", h.HandleUpdate)
	})
	r.Get("/signatures/{key}/confirm", h.HandleConfirm)
}

// HandleCreate handles POST /petitions/{petitionID}/signatures requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	petitionID, ok := pathID(w, r, "petitionID")
	if !ok {
		return
	}
	req, ok := decodeSignatureRequest(w, r)
	if !ok {
		return
	}

	sig := &models.Signature{PetitionID: petitionID}
	req.Apply(sig)

	violations, err := h.service.Create(ctx, sig, requestMeta(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "signature creation failed",
			"request_id", requestID,
			"petition_id", petitionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if violations.Any() {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, ViolationsResponse{Errors: violations})
		return
	}

	h.logger.InfoContext(ctx, "signature created",
		"request_id", requestID,
		"petition_id", petitionID,
		"signature_id", sig.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromSignature(sig))
}

// HandleUpdate handles PUT /petitions/{petitionID}/signatures/{signatureID}
// requests. Policy-gated profile requirements apply from this phase on.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	petitionID, ok := pathID(w, r, "petitionID")
	if !ok {
		return
	}
	signatureID, ok := pathID(w, r, "signatureID")
	if !ok {
		return
	}
	req, ok := decodeSignatureRequest(w, r)
	if !ok {
		return
	}

	sig, violations, err := h.service.Update(ctx, petitionID, signatureID, req.Apply)
	if err != nil {
		h.logger.ErrorContext(ctx, "signature update failed",
			"request_id", requestID,
			"signature_id", signatureID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if violations.Any() {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, ViolationsResponse{Errors: violations})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSignature(sig))
}

// HandleConfirm handles GET /signatures/{key}/confirm requests, the target of
// the confirmation link mailed to the signer.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	key := chi.URLParam(r, "key")
	sig, err := h.service.Confirm(ctx, key, requestMeta(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "signature confirmation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "signature confirmed",
		"request_id", requestID,
		"petition_id", sig.PetitionID,
		"signature_id", sig.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromSignature(sig))
}

// HandleList handles GET /petitions/{petitionID}/signatures requests and
// returns the publicly visible signatures.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	petitionID, ok := pathID(w, r, "petitionID")
	if !ok {
		return
	}

	sigs, err := h.service.ListVisible(ctx, petitionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "signature listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"petition_id", petitionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSignatures(sigs))
}

func decodeSignatureRequest(w http.ResponseWriter, r *http.Request) (*SignatureRequest, bool) {
	req, err := httputil.Decode[SignatureRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
}
