package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"petities/internal/petition/models"
	"petities/internal/petition/service"
	"petities/internal/platform/middleware"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/httputil"
)

// Service defines the interface for petition lookups and statistics.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Petition, error)
	GetBySlug(ctx context.Context, slug string) (*models.Petition, error)
	Stats(ctx context.Context, petitionID int64) (*service.Stats, error)
}

// Handler wires petition endpoints to the petition service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a petition handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts petition endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/petitions/{petitionID}", h.HandleGet)
	r.Get("/petitions/{petitionID}/stats", h.HandleStats)
	r.Get("/petitions/by-slug/{slug}", h.HandleGetBySlug)
}

// HandleGet handles GET /petitions/{petitionID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	petitionID, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(ctx, petitionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPetition(p))
}

// HandleGetBySlug handles GET /petitions/by-slug/{slug} requests.
func (h *Handler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.service.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPetition(p))
}

// HandleStats handles GET /petitions/{petitionID}/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	petitionID, ok := pathID(w, r)
	if !ok {
		return
	}
	stats, err := h.service.Stats(ctx, petitionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "petition stats failed",
			"request_id", middleware.GetRequestID(ctx),
			"petition_id", petitionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "petitionID"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "petitionID must be a positive integer"))
		return 0, false
	}
	return id, true
}
