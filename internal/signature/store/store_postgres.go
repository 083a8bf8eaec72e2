package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"petities/internal/signature/models"
	"petities/pkg/platform/sentinel"
)

// PostgresStore persists signatures in PostgreSQL via pgx. Expected schema:
//
//	CREATE TABLE signatures (
//	    id                           BIGSERIAL PRIMARY KEY,
//	    petition_id                  BIGINT NOT NULL DEFAULT 0,
//	    unique_key                   TEXT NOT NULL,
//	    person_name                  TEXT NOT NULL DEFAULT '',
//	    person_email                 TEXT NOT NULL DEFAULT '',
//	    person_street                TEXT NOT NULL DEFAULT '',
//	    person_street_number         TEXT NOT NULL DEFAULT '',
//	    person_street_number_suffix  TEXT NOT NULL DEFAULT '',
//	    person_postalcode            TEXT NOT NULL DEFAULT '',
//	    person_city                  TEXT NOT NULL DEFAULT '',
//	    person_function              TEXT NOT NULL DEFAULT '',
//	    person_country               VARCHAR(2) NOT NULL DEFAULT '',
//	    person_born_at               DATE,
//	    person_birth_city            TEXT NOT NULL DEFAULT '',
//	    person_dutch_citizen         BOOLEAN NOT NULL DEFAULT FALSE,
//	    subscribe                    BOOLEAN NOT NULL DEFAULT FALSE,
//	    signed_at                    TIMESTAMPTZ,
//	    confirmed_at                 TIMESTAMPTZ,
//	    confirmed                    BOOLEAN NOT NULL DEFAULT FALSE,
//	    visible                      BOOLEAN NOT NULL DEFAULT FALSE,
//	    special                      BOOLEAN NOT NULL DEFAULT FALSE,
//	    signature_remote_addr        TEXT NOT NULL DEFAULT '',
//	    signature_remote_browser     TEXT NOT NULL DEFAULT '',
//	    confirmation_remote_addr     TEXT NOT NULL DEFAULT '',
//	    confirmation_remote_browser  TEXT NOT NULL DEFAULT '',
//	    sort_order                   INTEGER NOT NULL DEFAULT 0,
//	    reminders_sent               INTEGER NOT NULL DEFAULT 0,
//	    last_reminder_sent_at        TIMESTAMPTZ,
//	    created_at                   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at                   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE UNIQUE INDEX signatures_unique_key ON signatures (unique_key);
//	CREATE UNIQUE INDEX signatures_email_petition ON signatures (person_email, petition_id);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed signature store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

const signatureColumns = `
	id, petition_id, unique_key,
	person_name, person_email, person_street, person_street_number,
	person_street_number_suffix, person_postalcode, person_city,
	person_function, person_country, person_born_at, person_birth_city,
	person_dutch_citizen, subscribe,
	signed_at, confirmed_at, confirmed, visible, special,
	signature_remote_addr, signature_remote_browser,
	confirmation_remote_addr, confirmation_remote_browser,
	sort_order, reminders_sent, last_reminder_sent_at,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, sig *models.Signature) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO signatures (
			petition_id, unique_key,
			person_name, person_email, person_street, person_street_number,
			person_street_number_suffix, person_postalcode, person_city,
			person_function, person_country, person_born_at, person_birth_city,
			person_dutch_citizen, subscribe,
			signed_at, confirmed_at, confirmed, visible, special,
			signature_remote_addr, signature_remote_browser,
			confirmation_remote_addr, confirmation_remote_browser,
			sort_order, reminders_sent, last_reminder_sent_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		RETURNING id, created_at, updated_at
	`,
		sig.PetitionID, sig.UniqueKey,
		sig.Name, sig.Email, sig.Street, sig.StreetNumber,
		sig.StreetNumberSuffix, sig.PostalCode, sig.City,
		sig.Function, sig.CountryCode, sig.BirthDate, sig.BirthCity,
		sig.DutchCitizen, sig.SubscribeToUpdates,
		nullTime(sig.SignedAt), sig.ConfirmedAt, sig.Confirmed, sig.Visible, sig.Special,
		sig.SignatureRemoteAddr, sig.SignatureRemoteBrowser,
		sig.ConfirmationRemoteAddr, sig.ConfirmationRemoteBrowser,
		sig.SortOrder, sig.RemindersSent, sig.LastReminderSentAt,
	).Scan(&sig.ID, &sig.CreatedAt, &sig.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create signature: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, sig *models.Signature) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE signatures SET
			petition_id = $2,
			person_name = $3, person_email = $4, person_street = $5,
			person_street_number = $6, person_street_number_suffix = $7,
			person_postalcode = $8, person_city = $9, person_function = $10,
			person_country = $11, person_born_at = $12, person_birth_city = $13,
			person_dutch_citizen = $14, subscribe = $15,
			signed_at = $16, confirmed_at = $17, confirmed = $18,
			visible = $19, special = $20,
			confirmation_remote_addr = $21, confirmation_remote_browser = $22,
			sort_order = $23, reminders_sent = $24, last_reminder_sent_at = $25,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`,
		sig.ID, sig.PetitionID,
		sig.Name, sig.Email, sig.Street,
		sig.StreetNumber, sig.StreetNumberSuffix,
		sig.PostalCode, sig.City, sig.Function,
		sig.CountryCode, sig.BirthDate, sig.BirthCity,
		sig.DutchCitizen, sig.SubscribeToUpdates,
		nullTime(sig.SignedAt), sig.ConfirmedAt, sig.Confirmed,
		sig.Visible, sig.Special,
		sig.ConfirmationRemoteAddr, sig.ConfirmationRemoteBrowser,
		sig.SortOrder, sig.RemindersSent, sig.LastReminderSentAt,
	).Scan(&sig.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update signature: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM signatures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Signature, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByKey(ctx context.Context, key string) (*models.Signature, error) {
	return s.findOne(ctx, `WHERE unique_key = $1`, key)
}

func (s *PostgresStore) FindByEmailAndPetition(ctx context.Context, email string, petitionID, excludeID int64) (*models.Signature, error) {
	return s.findOne(ctx,
		`WHERE person_email = $1 AND petition_id = $2 AND id <> $3 ORDER BY id LIMIT 1`,
		email, petitionID, excludeID)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.Signature, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+signatureColumns+` FROM signatures `+where, args...)
	sig, err := scanSignature(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find signature: %w", err)
	}
	return sig, nil
}

func (s *PostgresStore) ListConfirmed(ctx context.Context, petitionID int64) ([]*models.Signature, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+signatureColumns+`
		FROM signatures
		WHERE petition_id = $1 AND confirmed
		ORDER BY id
	`, petitionID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed signatures: %w", err)
	}
	defer rows.Close()
	return collectSignatures(rows)
}

func (s *PostgresStore) ListVisible(ctx context.Context, petitionID int64) ([]*models.Signature, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+signatureColumns+`
		FROM signatures
		WHERE petition_id = $1 AND visible AND confirmed
		ORDER BY sort_order, id
	`, petitionID)
	if err != nil {
		return nil, fmt.Errorf("list visible signatures: %w", err)
	}
	defer rows.Close()
	return collectSignatures(rows)
}

func (s *PostgresStore) ListRemindable(ctx context.Context, signedBefore, remindedBefore time.Time, limit int) ([]*models.Signature, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+signatureColumns+`
		FROM signatures
		WHERE NOT confirmed
		  AND signed_at <= $1
		  AND (last_reminder_sent_at IS NULL OR last_reminder_sent_at <= $2)
		ORDER BY id
		LIMIT $3
	`, signedBefore, remindedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list remindable signatures: %w", err)
	}
	defer rows.Close()
	return collectSignatures(rows)
}

func (s *PostgresStore) Counts(ctx context.Context, petitionID int64) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE confirmed),
			COUNT(*) FILTER (WHERE confirmed AND visible),
			COUNT(*) FILTER (WHERE confirmed AND special),
			COUNT(*) FILTER (WHERE confirmed AND subscribe)
		FROM signatures
		WHERE petition_id = $1
	`, petitionID).Scan(&c.Confirmed, &c.Visible, &c.Special, &c.Subscribed)
	if err != nil {
		return Counts{}, fmt.Errorf("count signatures: %w", err)
	}
	return c, nil
}

func collectSignatures(rows pgx.Rows) ([]*models.Signature, error) {
	var out []*models.Signature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}
	return out, nil
}

func scanSignature(row pgx.Row) (*models.Signature, error) {
	var (
		sig      models.Signature
		signedAt *time.Time
	)
	err := row.Scan(
		&sig.ID, &sig.PetitionID, &sig.UniqueKey,
		&sig.Name, &sig.Email, &sig.Street, &sig.StreetNumber,
		&sig.StreetNumberSuffix, &sig.PostalCode, &sig.City,
		&sig.Function, &sig.CountryCode, &sig.BirthDate, &sig.BirthCity,
		&sig.DutchCitizen, &sig.SubscribeToUpdates,
		&signedAt, &sig.ConfirmedAt, &sig.Confirmed, &sig.Visible, &sig.Special,
		&sig.SignatureRemoteAddr, &sig.SignatureRemoteBrowser,
		&sig.ConfirmationRemoteAddr, &sig.ConfirmationRemoteBrowser,
		&sig.SortOrder, &sig.RemindersSent, &sig.LastReminderSentAt,
		&sig.CreatedAt, &sig.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if signedAt != nil {
		sig.SignedAt = *signedAt
	}
	return &sig, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
