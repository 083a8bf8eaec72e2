// Package handler exposes the operational endpoints: the reminder sweep and
// the daily-bucket recount. Both are mounted behind admin authentication.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"petities/internal/platform/config"
	"petities/internal/platform/middleware"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/httputil"
)

// Service defines the interface for the background signature operations.
type Service interface {
	SweepReminders(ctx context.Context, cfg config.ReminderConfig) (int, error)
	RecountDailyBuckets(ctx context.Context, petitionID int64) (int, error)
}

// Handler wires admin endpoints to the signature service.
type Handler struct {
	service   Service
	reminders config.ReminderConfig
	logger    *slog.Logger
}

// New constructs an admin handler with its dependencies.
func New(service Service, reminders config.ReminderConfig, logger *slog.Logger) *Handler {
	return &Handler{service: service, reminders: reminders, logger: logger}
}

// Register mounts admin endpoints on the router. The caller is expected to
// wrap r with admin authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/reminders/sweep", h.HandleSweepReminders)
	r.Post("/admin/petitions/{petitionID}/recount", h.HandleRecount)
}

// SweepResponse reports the outcome of a reminder sweep.
type SweepResponse struct {
	Processed  int   `json:"processed"`
	DurationMs int64 `json:"duration_ms"`
}

// RecountResponse reports the outcome of a daily-bucket recount.
type RecountResponse struct {
	PetitionID int64 `json:"petition_id"`
	Replayed   int   `json:"replayed"`
}

// HandleSweepReminders handles POST /admin/reminders/sweep requests.
func (h *Handler) HandleSweepReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	processed, err := h.service.SweepReminders(ctx, h.reminders)
	if err != nil {
		h.logger.ErrorContext(ctx, "reminder sweep failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "reminder sweep finished",
		"request_id", middleware.GetRequestID(ctx),
		"processed", processed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, SweepResponse{
		Processed:  processed,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

// HandleRecount handles POST /admin/petitions/{petitionID}/recount requests.
func (h *Handler) HandleRecount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	petitionID, err := strconv.ParseInt(chi.URLParam(r, "petitionID"), 10, 64)
	if err != nil || petitionID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "petitionID must be a positive integer"))
		return
	}

	replayed, err := h.service.RecountDailyBuckets(ctx, petitionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "daily bucket recount failed",
			"request_id", middleware.GetRequestID(ctx),
			"petition_id", petitionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "daily buckets recounted",
		"request_id", middleware.GetRequestID(ctx),
		"petition_id", petitionID,
		"replayed", replayed,
	)
	httputil.WriteJSON(w, http.StatusOK, RecountResponse{
		PetitionID: petitionID,
		Replayed:   replayed,
	})
}
