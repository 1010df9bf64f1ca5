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

const fondColumns = `id, user_id, source_compte_id, primary_compte_id, transaction_source_id,
	libelle, description, montant_initial, montant_restant, version, created_at, updated_at`

const mouvementColumns = `id, fond_id, user_id, compte_id, type, montant,
	transaction_id, libelle, created_at`

type FondRepository struct {
	db *sql.DB
}

func NewFondRepository(db *sql.DB) *FondRepository {
	return &FondRepository{db: db}
}

func (r *FondRepository) Create(ctx context.Context, f *domain.FondPartage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fonds_partages (
			id, user_id, source_compte_id, primary_compte_id, transaction_source_id,
			libelle, description, montant_initial, montant_restant, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		f.ID, f.UserID, f.SourceCompteID, f.PrimaryCompteID, f.TransactionSourceID,
		f.Libelle, f.Description, f.MontantInitial, f.MontantRestant, f.Version,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *FondRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FondPartage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fondColumns+` FROM fonds_partages WHERE id = $1`, id,
	)
	f, err := scanFond(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return f, nil
}

// ListAvailable returns funds the given compte can still draw from, newest
// first. Exhausted funds are filtered out; callers re-query after mutating.
func (r *FondRepository) ListAvailable(ctx context.Context, userID, compteID uuid.UUID) ([]domain.FondPartage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fondColumns+` FROM fonds_partages
		WHERE user_id = $1
		  AND (source_compte_id = $2 OR primary_compte_id = $2)
		  AND montant_restant > 0
		ORDER BY created_at DESC`,
		userID, compteID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAvailable: %w", err)
	}
	defer rows.Close()

	var fonds []domain.FondPartage
	for rows.Next() {
		f, err := scanFond(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAvailable: scan: %w", err)
		}
		fonds = append(fonds, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAvailable: rows: %w", err)
	}
	return fonds, nil
}

// UpdateRestant applies a version-guarded write of the materialized running
// total. A zero rows-affected result means a concurrent writer won the race.
func (r *FondRepository) UpdateRestant(ctx context.Context, tx *sql.Tx, id uuid.UUID, newRestant decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE fonds_partages SET montant_restant = $1, version = $2, updated_at = now()
		WHERE id = $3 AND version = $4`,
		newRestant, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateRestant: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateRestant: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateRestant: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *FondRepository) CreateMouvement(ctx context.Context, tx *sql.Tx, m *domain.MouvementFond) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO mouvements_fonds (
			id, fond_id, user_id, compte_id, type, montant, transaction_id, libelle, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.FondID, m.UserID, m.CompteID, m.Type, m.Montant,
		m.TransactionID, m.Libelle, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateMouvement: %w", err)
	}
	return nil
}

// GetMouvements returns the fund's full movement history oldest first, the
// order a replay folds it in.
func (r *FondRepository) GetMouvements(ctx context.Context, fondID uuid.UUID) ([]domain.MouvementFond, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mouvementColumns+` FROM mouvements_fonds
		WHERE fond_id = $1 ORDER BY created_at, id`, fondID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetMouvements: %w", err)
	}
	defer rows.Close()

	var mouvements []domain.MouvementFond
	for rows.Next() {
		m, err := scanMouvement(rows)
		if err != nil {
			return nil, fmt.Errorf("GetMouvements: scan: %w", err)
		}
		mouvements = append(mouvements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetMouvements: rows: %w", err)
	}
	return mouvements, nil
}

func scanFond(s scanner) (*domain.FondPartage, error) {
	var f domain.FondPartage
	var primaryCompteID uuid.NullUUID
	err := s.Scan(
		&f.ID, &f.UserID, &f.SourceCompteID, &primaryCompteID, &f.TransactionSourceID,
		&f.Libelle, &f.Description, &f.MontantInitial, &f.MontantRestant, &f.Version,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if primaryCompteID.Valid {
		f.PrimaryCompteID = &primaryCompteID.UUID
	}
	return &f, nil
}

func scanMouvement(s scanner) (*domain.MouvementFond, error) {
	var m domain.MouvementFond
	var transactionID uuid.NullUUID
	err := s.Scan(
		&m.ID, &m.FondID, &m.UserID, &m.CompteID, &m.Type, &m.Montant,
		&transactionID, &m.Libelle, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transactionID.Valid {
		m.TransactionID = &transactionID.UUID
	}
	return &m, nil
}
