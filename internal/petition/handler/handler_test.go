package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	petition "petities/internal/petition/models"
	"petities/internal/petition/service"
	petitionstore "petities/internal/petition/store"
	"petities/internal/signature/counters"
	"petities/internal/signature/models"
	signaturestore "petities/internal/signature/store"
)

type PetitionHandlerSuite struct {
	suite.Suite
	router   chi.Router
	counters *counters.InMemoryStore
}

func TestPetitionHandlerSuite(t *testing.T) {
	suite.Run(t, new(PetitionHandlerSuite))
}

func (s *PetitionHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	petitions := petitionstore.NewInMemory()
	signatures := signaturestore.NewInMemory()
	s.counters = counters.NewInMemoryStore()

	ctx := context.Background()
	age := 18
	s.Require().NoError(petitions.Create(ctx, &petition.Petition{
		ID:   1,
		Name: "Strict",
		Slug: "strict",
		Type: &petition.PetitionType{
			RequireFullAddress: true,
			RequiredMinimumAge: &age,
		},
	}))

	now := time.Now()
	signatures.Seed(&models.Signature{
		PetitionID: 1, Email: "a@x.com", Confirmed: true, ConfirmedAt: &now,
		Visible: true, SignedAt: now,
	})

	svc := service.New(petitions, signatures, s.counters, logger)
	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)
}

func (s *PetitionHandlerSuite) get(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func (s *PetitionHandlerSuite) TestGet() {
	s.Run("by id", func() {
		w := s.get("/petitions/1")
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var resp PetitionResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal("Strict", resp.Name)
		s.Require().NotNil(resp.Requirements)
		s.True(resp.Requirements.FullAddress)
		s.Require().NotNil(resp.Requirements.MinimumAge)
		s.Equal(18, *resp.Requirements.MinimumAge)
	})

	s.Run("by slug", func() {
		w := s.get("/petitions/by-slug/strict")
		s.Require().Equal(http.StatusOK, w.Code)

		var resp PetitionResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal(int64(1), resp.ID)
	})

	s.Run("unknown id", func() {
		s.Equal(http.StatusNotFound, s.get("/petitions/99").Code)
	})

	s.Run("non-numeric id", func() {
		s.Equal(http.StatusBadRequest, s.get("/petitions/abc").Code)
	})
}

func (s *PetitionHandlerSuite) TestStats() {
	ctx := context.Background()
	s.Require().NoError(s.counters.Set(ctx, counters.SizeCountKey(1), 42))
	s.Require().NoError(s.counters.Set(ctx, counters.ActivityRateKey(1), 7))

	w := s.get("/petitions/1/stats")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp service.Stats
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(int64(42), resp.SizeCount)
	s.Equal(int64(7), resp.ActivityRate)
	s.Len(resp.Daily, 7)
	s.Equal(int64(1), resp.Counts.Confirmed)
	s.Equal(int64(1), resp.Counts.Visible)
}
