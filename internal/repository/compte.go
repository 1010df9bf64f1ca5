package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

const compteColumns = `id, user_id, nom, solde, exclude_from_total, created_at, updated_at`

type CompteRepository struct {
	db *sql.DB
}

func NewCompteRepository(db *sql.DB) *CompteRepository {
	return &CompteRepository{db: db}
}

func (r *CompteRepository) Create(ctx context.Context, c *domain.CompteBancaire) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comptes_bancaires (
			id, user_id, nom, solde, exclude_from_total, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.Nom, c.Solde, c.ExcludeFromTotal, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CompteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CompteBancaire, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+compteColumns+` FROM comptes_bancaires WHERE id = $1`, id,
	)
	c, err := scanCompte(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CompteRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CompteBancaire, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+compteColumns+` FROM comptes_bancaires WHERE user_id = $1 ORDER BY created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var comptes []domain.CompteBancaire
	for rows.Next() {
		c, err := scanCompte(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		comptes = append(comptes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return comptes, nil
}

func (r *CompteRepository) SetExclusion(ctx context.Context, id, userID uuid.UUID, excluded bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comptes_bancaires SET exclude_from_total = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3`,
		excluded, id, userID,
	)
	if err != nil {
		return fmt.Errorf("SetExclusion: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetExclusion: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetExclusion: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCompte(s scanner) (*domain.CompteBancaire, error) {
	var c domain.CompteBancaire
	err := s.Scan(
		&c.ID, &c.UserID, &c.Nom, &c.Solde, &c.ExcludeFromTotal, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
