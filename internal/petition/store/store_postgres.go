package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"petities/internal/petition/models"
	"petities/pkg/platform/sentinel"
)

// PostgresStore persists petitions in PostgreSQL via database/sql with the pq
// driver. Expected schema:
//
//	CREATE TABLE petitions (
//	    id          BIGSERIAL PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    slug        TEXT UNIQUE,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE petition_types (
//	    id                    BIGSERIAL PRIMARY KEY,
//	    petition_id           BIGINT NOT NULL REFERENCES petitions(id),
//	    name                  TEXT NOT NULL DEFAULT '',
//	    require_full_address  BOOLEAN NOT NULL DEFAULT FALSE,
//	    require_born_at       BOOLEAN NOT NULL DEFAULT FALSE,
//	    required_minimum_age  INTEGER,
//	    require_birth_city    BOOLEAN NOT NULL DEFAULT FALSE,
//	    country_code          VARCHAR(2)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed petition store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, p *models.Petition) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO petitions (name, slug)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at, updated_at
	`, p.Name, p.Slug).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create petition: %w", err)
	}

	if p.Type != nil {
		t := p.Type
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO petition_types
				(petition_id, name, require_full_address, require_born_at,
				 required_minimum_age, require_birth_city, country_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, p.ID, t.Name, t.RequireFullAddress, t.RequireBornAt,
			nullInt(t.RequiredMinimumAge), t.RequireBirthCity, nullString(t.CountryCode),
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("create petition type: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Petition, error) {
	return s.findOne(ctx, `WHERE p.id = $1`, id)
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Petition, error) {
	return s.findOne(ctx, `WHERE p.slug = $1`, slug)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Petition, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.slug, ''), p.created_at, p.updated_at,
		       t.id, t.name, t.require_full_address, t.require_born_at,
		       t.required_minimum_age, t.require_birth_city, t.country_code
		FROM petitions p
		LEFT JOIN petition_types t ON t.petition_id = p.id
	` + where

	var (
		p           models.Petition
		typeID      sql.NullInt64
		typeName    sql.NullString
		fullAddr    sql.NullBool
		bornAt      sql.NullBool
		minAge      sql.NullInt64
		birthCity   sql.NullBool
		countryCode sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt,
		&typeID, &typeName, &fullAddr, &bornAt, &minAge, &birthCity, &countryCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find petition: %w", err)
	}

	if typeID.Valid {
		t := &models.PetitionType{
			ID:                 typeID.Int64,
			Name:               typeName.String,
			RequireFullAddress: fullAddr.Bool,
			RequireBornAt:      bornAt.Bool,
			RequireBirthCity:   birthCity.Bool,
		}
		if minAge.Valid {
			age := int(minAge.Int64)
			t.RequiredMinimumAge = &age
		}
		if countryCode.Valid && countryCode.String != "" {
			cc := countryCode.String
			t.CountryCode = &cc
		}
		p.Type = t
	}
	return &p, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
