//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the table layout documented on the Postgres stores.
const schema = `
CREATE TABLE petitions (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    slug        TEXT UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE petition_types (
    id                    BIGSERIAL PRIMARY KEY,
    petition_id           BIGINT NOT NULL REFERENCES petitions(id),
    name                  TEXT NOT NULL DEFAULT '',
    require_full_address  BOOLEAN NOT NULL DEFAULT FALSE,
    require_born_at       BOOLEAN NOT NULL DEFAULT FALSE,
    required_minimum_age  INTEGER,
    require_birth_city    BOOLEAN NOT NULL DEFAULT FALSE,
    country_code          VARCHAR(2)
);

CREATE TABLE signatures (
    id                           BIGSERIAL PRIMARY KEY,
    petition_id                  BIGINT NOT NULL DEFAULT 0,
    unique_key                   TEXT NOT NULL,
    person_name                  TEXT NOT NULL DEFAULT '',
    person_email                 TEXT NOT NULL DEFAULT '',
    person_street                TEXT NOT NULL DEFAULT '',
    person_street_number         TEXT NOT NULL DEFAULT '',
    person_street_number_suffix  TEXT NOT NULL DEFAULT '',
    person_postalcode            TEXT NOT NULL DEFAULT '',
    person_city                  TEXT NOT NULL DEFAULT '',
    person_function              TEXT NOT NULL DEFAULT '',
    person_country               VARCHAR(2) NOT NULL DEFAULT '',
    person_born_at               DATE,
    person_birth_city            TEXT NOT NULL DEFAULT '',
    person_dutch_citizen         BOOLEAN NOT NULL DEFAULT FALSE,
    subscribe                    BOOLEAN NOT NULL DEFAULT FALSE,
    signed_at                    TIMESTAMPTZ,
    confirmed_at                 TIMESTAMPTZ,
    confirmed                    BOOLEAN NOT NULL DEFAULT FALSE,
    visible                      BOOLEAN NOT NULL DEFAULT FALSE,
    special                      BOOLEAN NOT NULL DEFAULT FALSE,
    signature_remote_addr        TEXT NOT NULL DEFAULT '',
    signature_remote_browser     TEXT NOT NULL DEFAULT '',
    confirmation_remote_addr     TEXT NOT NULL DEFAULT '',
    confirmation_remote_browser  TEXT NOT NULL DEFAULT '',
    sort_order                   INTEGER NOT NULL DEFAULT 0,
    reminders_sent               INTEGER NOT NULL DEFAULT 0,
    last_reminder_sent_at        TIMESTAMPTZ,
    created_at                   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at                   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX signatures_unique_key ON signatures (unique_key);
CREATE UNIQUE INDEX signatures_email_petition ON signatures (person_email, petition_id);
`

// PostgresContainer wraps a testcontainers Postgres instance with the petition
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a Postgres container, applies the schema and
// registers teardown with t.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("petities_test"),
		tcpostgres.WithUsername("petities"),
		tcpostgres.WithPassword("petities"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		URL:       url,
		Pool:      pool,
	}
}

// Truncate empties all tables. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `TRUNCATE signatures, petition_types, petitions RESTART IDENTITY`)
	return err
}
