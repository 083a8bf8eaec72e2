package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	petition "petities/internal/petition/models"
	petitionstore "petities/internal/petition/store"
	"petities/internal/signature/counters"
	"petities/internal/signature/mailer"
	"petities/internal/signature/models"
	"petities/internal/signature/service"
	"petities/internal/signature/store"
)

type SignatureHandlerSuite struct {
	suite.Suite
	router     chi.Router
	signatures *store.InMemory
	counters   *counters.InMemoryStore
}

func TestSignatureHandlerSuite(t *testing.T) {
	suite.Run(t, new(SignatureHandlerSuite))
}

func (s *SignatureHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.signatures = store.NewInMemory()
	s.counters = counters.NewInMemoryStore()

	petitions := petitionstore.NewInMemory()
	ctx := context.Background()
	s.Require().NoError(petitions.Create(ctx, &petition.Petition{ID: 1, Name: "Plain"}))
	s.Require().NoError(petitions.Create(ctx, &petition.Petition{
		ID:   2,
		Name: "Strict",
		Type: &petition.PetitionType{RequireFullAddress: true},
	}))

	agg := counters.NewAggregator(s.counters, nil, logger, nil)
	svc := service.New(s.signatures, petitions, agg, mailer.NewLogMailer(logger), logger)

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)
}

func (s *SignatureHandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *SignatureHandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(w.Body).Decode(v))
}

func (s *SignatureHandlerSuite) TestCreate() {
	s.Run("valid body", func() {
		w := s.do(http.MethodPost, "/petitions/1/signatures",
			`{"name":"Jane D.","email":"jane@x.com","city":"Amsterdam","visible":true}`)
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

		var resp SignatureResponse
		s.decode(w, &resp)
		s.NotZero(resp.ID)
		s.Equal(int64(1), resp.PetitionID)
		s.False(resp.Confirmed)
		s.False(resp.SignedAt.IsZero())
	})

	s.Run("validation violations", func() {
		w := s.do(http.MethodPost, "/petitions/1/signatures",
			`{"name":"Mononym","email":"broken"}`)
		s.Require().Equal(http.StatusUnprocessableEntity, w.Code)

		var resp ViolationsResponse
		s.decode(w, &resp)
		s.Contains(resp.Errors, "name")
		s.Contains(resp.Errors, "email")
	})

	s.Run("malformed birth date", func() {
		w := s.do(http.MethodPost, "/petitions/1/signatures",
			`{"name":"Jane D.","email":"jane2@x.com","birth_date":"31-08-2000"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown petition", func() {
		w := s.do(http.MethodPost, "/petitions/99/signatures",
			`{"name":"Jane D.","email":"jane@x.com"}`)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("garbage body", func() {
		w := s.do(http.MethodPost, "/petitions/1/signatures", `{"name":`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *SignatureHandlerSuite) TestUpdate() {
	w := s.do(http.MethodPost, "/petitions/2/signatures",
		`{"name":"Jane D.","email":"jane@x.com"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created SignatureResponse
	s.decode(w, &created)

	s.Run("missing address rejected on update", func() {
		w := s.do(http.MethodPut, "/petitions/2/signatures/1",
			`{"name":"Jane D.","email":"jane@x.com"}`)
		s.Require().Equal(http.StatusUnprocessableEntity, w.Code)

		var resp ViolationsResponse
		s.decode(w, &resp)
		s.Contains(resp.Errors, "city")
	})

	s.Run("complete address accepted", func() {
		w := s.do(http.MethodPut, "/petitions/2/signatures/1",
			`{"name":"Jane D.","email":"jane@x.com","street":"Damstraat","street_number":"12","city":"Amsterdam"}`)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var resp SignatureResponse
		s.decode(w, &resp)
		s.Equal(created.ID, resp.ID)
	})

	s.Run("petition mismatch hidden as not found", func() {
		w := s.do(http.MethodPut, "/petitions/1/signatures/1",
			`{"name":"Jane D.","email":"jane@x.com","street":"Damstraat","street_number":"12","city":"Mutated"}`)
		s.Equal(http.StatusNotFound, w.Code)

		// A not-found answer must not have persisted anything.
		stored, err := s.signatures.FindByID(context.Background(), created.ID)
		s.Require().NoError(err)
		s.Equal("Amsterdam", stored.City)
	})
}

func (s *SignatureHandlerSuite) TestConfirm() {
	w := s.do(http.MethodPost, "/petitions/1/signatures",
		`{"name":"Jane D.","email":"jane@x.com","city":"Amsterdam"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created SignatureResponse
	s.decode(w, &created)

	// The token travels by mail, never over the API.
	stored, err := s.signatures.FindByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.NotContains(w.Body.String(), stored.UniqueKey)

	s.Run("valid key", func() {
		w := s.do(http.MethodGet, "/signatures/"+stored.UniqueKey+"/confirm", "")
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var resp SignatureResponse
		s.decode(w, &resp)
		s.True(resp.Confirmed)
		s.NotNil(resp.ConfirmedAt)

		count, _, err := s.counters.Get(context.Background(), counters.SizeCountKey(1))
		s.Require().NoError(err)
		s.Equal(int64(1), count)
	})

	s.Run("unknown key", func() {
		w := s.do(http.MethodGet, "/signatures/nope/confirm", "")
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *SignatureHandlerSuite) TestList() {
	confirmedAt := time.Now()
	s.signatures.Seed(&models.Signature{
		PetitionID: 1, Name: "Visible P.", Email: "v@x.com",
		Confirmed: true, ConfirmedAt: &confirmedAt, Visible: true, SignedAt: confirmedAt,
	})
	s.signatures.Seed(&models.Signature{
		PetitionID: 1, Name: "Hidden P.", Email: "h@x.com",
		Confirmed: true, ConfirmedAt: &confirmedAt, SignedAt: confirmedAt,
	})
	s.signatures.Seed(&models.Signature{
		PetitionID: 1, Name: "Unconfirmed P.", Email: "u@x.com",
		Visible: true, SignedAt: confirmedAt,
	})

	w := s.do(http.MethodGet, "/petitions/1/signatures", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp []SignatureResponse
	s.decode(w, &resp)
	s.Require().Len(resp, 1)
	s.Equal("Visible P.", resp[0].Name)
}
