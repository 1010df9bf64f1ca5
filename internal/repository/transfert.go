package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

const transfertColumns = `id, user_id, recette_source_id, recette_destination_id,
	montant, description, date_transfert, created_at, updated_at`

type TransfertRepository struct {
	db *sql.DB
}

func NewTransfertRepository(db *sql.DB) *TransfertRepository {
	return &TransfertRepository{db: db}
}

func (r *TransfertRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transfert) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transferts (
			id, user_id, recette_source_id, recette_destination_id,
			montant, description, date_transfert, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.UserID, t.RecetteSourceID, t.RecetteDestinationID,
		t.Montant, t.Description, t.DateTransfert, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransfertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfert, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transfertColumns+` FROM transferts WHERE id = $1`, id,
	)
	t, err := scanTransfert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *TransfertRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Transfert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transfertColumns+` FROM transferts
		WHERE user_id = $1 ORDER BY date_transfert DESC, created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var transferts []domain.Transfert
	for rows.Next() {
		t, err := scanTransfert(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		transferts = append(transferts, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return transferts, nil
}

func (r *TransfertRepository) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM transferts WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanTransfert(s scanner) (*domain.Transfert, error) {
	var t domain.Transfert
	err := s.Scan(
		&t.ID, &t.UserID, &t.RecetteSourceID, &t.RecetteDestinationID,
		&t.Montant, &t.Description, &t.DateTransfert, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
