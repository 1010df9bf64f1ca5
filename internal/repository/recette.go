package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

const recetteColumns = `id, user_id, libelle, montant, solde_disponible, version,
	validation_bancaire, date_validation_bancaire, created_at, updated_at`

type RecetteRepository struct {
	db *sql.DB
}

func NewRecetteRepository(db *sql.DB) *RecetteRepository {
	return &RecetteRepository{db: db}
}

func (r *RecetteRepository) Create(ctx context.Context, rec *domain.Recette) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recettes (
			id, user_id, libelle, montant, solde_disponible, version,
			validation_bancaire, date_validation_bancaire, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, rec.Libelle, rec.Montant, rec.SoldeDisponible, rec.Version,
		rec.ValidationBancaire, rec.DateValidationBancaire, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *RecetteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recette, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recetteColumns+` FROM recettes WHERE id = $1`, id,
	)
	rec, err := scanRecette(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return rec, nil
}

func (r *RecetteRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Recette, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recetteColumns+` FROM recettes WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var recettes []domain.Recette
	for rows.Next() {
		rec, err := scanRecette(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		recettes = append(recettes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return recettes, nil
}

func (r *RecetteRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Recette, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+recetteColumns+` FROM recettes WHERE id = $1 FOR UPDATE`, id,
	)
	rec, err := scanRecette(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return rec, nil
}

func (r *RecetteRepository) UpdateSolde(ctx context.Context, tx *sql.Tx, id uuid.UUID, newSolde decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE recettes SET solde_disponible = $1, version = $2, updated_at = now()
		WHERE id = $3 AND version = $4`,
		newSolde, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateSolde: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateSolde: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateSolde: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *RecetteRepository) SetCertification(ctx context.Context, id, userID uuid.UUID, certified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recettes SET
			validation_bancaire = $1,
			date_validation_bancaire = CASE WHEN $1 THEN now() ELSE NULL END,
			updated_at = now()
		WHERE id = $2 AND user_id = $3`,
		certified, id, userID,
	)
	if err != nil {
		return fmt.Errorf("SetCertification: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetCertification: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetCertification: %w", domain.ErrNotFound)
	}
	return nil
}

// CountTransferts reports how many transferts still reference the recette as
// source or destination. Deletion is refused while this is non-zero.
func (r *RecetteRepository) CountTransferts(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transferts
		WHERE recette_source_id = $1 OR recette_destination_id = $1`, id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountTransferts: %w", err)
	}
	return count, nil
}

func (r *RecetteRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recettes WHERE id = $1 AND user_id = $2`, id, userID,
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

func scanRecette(s scanner) (*domain.Recette, error) {
	var rec domain.Recette
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Libelle, &rec.Montant, &rec.SoldeDisponible, &rec.Version,
		&rec.ValidationBancaire, &rec.DateValidationBancaire, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
