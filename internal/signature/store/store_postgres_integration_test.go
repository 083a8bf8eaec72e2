//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"petities/internal/signature/models"
	"petities/internal/signature/store"
	"petities/pkg/platform/sentinel"
	"petities/pkg/testutil/containers"
)

type PostgresStoreIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreIntegrationSuite))
}

func (s *PostgresStoreIntegrationSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func (s *PostgresStoreIntegrationSuite) newSignature(key, email string) *models.Signature {
	born := time.Date(2000, 3, 14, 0, 0, 0, 0, time.UTC)
	return &models.Signature{
		PetitionID:         1,
		UniqueKey:          key,
		Name:               "Jane D.",
		Email:              email,
		Street:             "Damstraat",
		StreetNumber:       "12",
		City:               "Amsterdam",
		BirthDate:          &born,
		DutchCitizen:       true,
		SubscribeToUpdates: true,
		SignedAt:           time.Now().UTC().Truncate(time.Second),
	}
}

func (s *PostgresStoreIntegrationSuite) TestCreateAndFind() {
	ctx := context.Background()
	sig := s.newSignature("key-1", "jane@x.com")

	s.Require().NoError(s.store.Create(ctx, sig))
	s.NotZero(sig.ID)
	s.False(sig.CreatedAt.IsZero())

	byID, err := s.store.FindByID(ctx, sig.ID)
	s.Require().NoError(err)
	s.Equal("jane@x.com", byID.Email)
	s.Equal("Amsterdam", byID.City)
	s.Require().NotNil(byID.BirthDate)
	s.True(byID.SignedAt.Equal(sig.SignedAt))

	byKey, err := s.store.FindByKey(ctx, "key-1")
	s.Require().NoError(err)
	s.Equal(sig.ID, byKey.ID)

	_, err = s.store.FindByKey(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestUniqueConstraints() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newSignature("key-1", "jane@x.com")))

	s.Run("duplicate key", func() {
		dup := s.newSignature("key-1", "other@x.com")
		s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("duplicate email within petition", func() {
		dup := s.newSignature("key-2", "jane@x.com")
		s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("same email on another petition", func() {
		other := s.newSignature("key-3", "jane@x.com")
		other.PetitionID = 2
		s.NoError(s.store.Create(ctx, other))
	})
}

func (s *PostgresStoreIntegrationSuite) TestUpdateAndDelete() {
	ctx := context.Background()
	sig := s.newSignature("key-1", "jane@x.com")
	s.Require().NoError(s.store.Create(ctx, sig))

	now := time.Now().UTC().Truncate(time.Second)
	sig.Confirm(now)
	sig.City = "Utrecht"
	s.Require().NoError(s.store.Update(ctx, sig))

	got, err := s.store.FindByID(ctx, sig.ID)
	s.Require().NoError(err)
	s.True(got.Confirmed)
	s.Require().NotNil(got.ConfirmedAt)
	s.Equal("Utrecht", got.City)

	s.Require().NoError(s.store.Delete(ctx, sig.ID))
	s.ErrorIs(s.store.Delete(ctx, sig.ID), sentinel.ErrNotFound)

	missing := s.newSignature("key-9", "gone@x.com")
	missing.ID = 9999
	s.ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestFindByEmailAndPetition() {
	ctx := context.Background()
	first := s.newSignature("key-1", "jane@x.com")
	s.Require().NoError(s.store.Create(ctx, first))

	found, err := s.store.FindByEmailAndPetition(ctx, "jane@x.com", 1, 0)
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID)

	_, err = s.store.FindByEmailAndPetition(ctx, "jane@x.com", 1, first.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestListRemindable() {
	ctx := context.Background()
	now := time.Now().UTC()

	due := s.newSignature("key-1", "due@x.com")
	due.SignedAt = now.Add(-48 * time.Hour)
	s.Require().NoError(s.store.Create(ctx, due))

	fresh := s.newSignature("key-2", "fresh@x.com")
	fresh.SignedAt = now.Add(-time.Hour)
	s.Require().NoError(s.store.Create(ctx, fresh))

	reminded := s.newSignature("key-3", "reminded@x.com")
	reminded.SignedAt = now.Add(-72 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	reminded.LastReminderSentAt = &yesterday
	s.Require().NoError(s.store.Create(ctx, reminded))

	confirmed := s.newSignature("key-4", "done@x.com")
	confirmed.SignedAt = now.Add(-72 * time.Hour)
	confirmed.Confirm(now)
	s.Require().NoError(s.store.Create(ctx, confirmed))

	out, err := s.store.ListRemindable(ctx, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("due@x.com", out[0].Email)
}

func (s *PostgresStoreIntegrationSuite) TestListsAndCounts() {
	ctx := context.Background()
	now := time.Now().UTC()

	visible := s.newSignature("key-1", "v@x.com")
	visible.Confirm(now)
	visible.Visible = true
	visible.SortOrder = 2
	s.Require().NoError(s.store.Create(ctx, visible))

	first := s.newSignature("key-2", "first@x.com")
	first.Confirm(now)
	first.Visible = true
	first.SortOrder = 1
	s.Require().NoError(s.store.Create(ctx, first))

	hidden := s.newSignature("key-3", "h@x.com")
	hidden.Confirm(now)
	hidden.Special = true
	s.Require().NoError(s.store.Create(ctx, hidden))

	pending := s.newSignature("key-4", "p@x.com")
	s.Require().NoError(s.store.Create(ctx, pending))

	confirmed, err := s.store.ListConfirmed(ctx, 1)
	s.Require().NoError(err)
	s.Len(confirmed, 3)

	visibles, err := s.store.ListVisible(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(visibles, 2)
	s.Equal("first@x.com", visibles[0].Email, "sort_order wins over insertion order")

	counts, err := s.store.Counts(ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(3), counts.Confirmed)
	s.Equal(int64(2), counts.Visible)
	s.Equal(int64(1), counts.Special)
	s.Equal(int64(3), counts.Subscribed)
}
