package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/logging"
)

type recetteRepo interface {
	Create(ctx context.Context, rec *domain.Recette) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recette, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Recette, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Recette, error)
	UpdateSolde(ctx context.Context, tx *sql.Tx, id uuid.UUID, newSolde decimal.Decimal, newVersion int64) error
	SetCertification(ctx context.Context, id, userID uuid.UUID, certified bool) error
	CountTransferts(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type RecetteService struct {
	recettes recetteRepo
	db       *sql.DB
}

func NewRecetteService(recettes recetteRepo, db *sql.DB) *RecetteService {
	return &RecetteService{recettes: recettes, db: db}
}

// CreateRecette records an income receipt. The available balance starts at
// the received amount and only ever moves through debits and transferts.
func (s *RecetteService) CreateRecette(ctx context.Context, userID uuid.UUID, libelle string, montant decimal.Decimal) (*domain.Recette, error) {
	if err := domain.ValidateMontant(montant); err != nil {
		return nil, fmt.Errorf("CreateRecette: %w", err)
	}
	if libelle == "" {
		return nil, fmt.Errorf("CreateRecette: %w", domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	rec := &domain.Recette{
		ID:              uuid.New(),
		UserID:          userID,
		Libelle:         libelle,
		Montant:         montant,
		SoldeDisponible: montant,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.recettes.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("CreateRecette: %w", err)
	}
	return rec, nil
}

func (s *RecetteService) GetRecetteForUser(ctx context.Context, recetteID, userID uuid.UUID) (*domain.Recette, error) {
	rec, err := s.recettes.GetByID(ctx, recetteID)
	if err != nil {
		return nil, fmt.Errorf("GetRecetteForUser: %w", err)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("GetRecetteForUser: %w", domain.ErrNotFound)
	}
	return rec, nil
}

func (s *RecetteService) ListRecettes(ctx context.Context, userID uuid.UUID) ([]domain.Recette, error) {
	recettes, err := s.recettes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListRecettes: %w", err)
	}
	return recettes, nil
}

// Debit spends down a recette directly; the expense row itself lives with
// the expense-recording collaborator.
func (s *RecetteService) Debit(ctx context.Context, recetteID, userID uuid.UUID, montant decimal.Decimal) (*domain.Recette, error) {
	if err := domain.ValidateMontant(montant); err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Debit: begin tx: %w", err)
	}
	defer tx.Rollback()

	rec, err := s.recettes.GetForUpdate(ctx, tx, recetteID)
	if err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("Debit: %w", domain.ErrNotFound)
	}

	if rec.SoldeDisponible.LessThan(montant) {
		return nil, fmt.Errorf("Debit: recette %s: %w", rec.ID, domain.ErrInsufficientFunds)
	}

	newSolde := rec.SoldeDisponible.Sub(montant)
	if err := s.recettes.UpdateSolde(ctx, tx, rec.ID, newSolde, rec.Version+1); err != nil {
		return nil, fmt.Errorf("Debit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Debit: commit: %w", err)
	}

	logging.FromContext(ctx).Info("recette debited",
		"recette_id", rec.ID, "montant", montant, "solde_disponible", newSolde)

	rec.SoldeDisponible = newSolde
	rec.Version++
	return rec, nil
}

// SetCertification toggles the bank-validation flag. The validation date is
// stamped when the flag is set and cleared when it is unset; balances are
// never touched.
func (s *RecetteService) SetCertification(ctx context.Context, recetteID, userID uuid.UUID, certified bool) error {
	if err := s.recettes.SetCertification(ctx, recetteID, userID, certified); err != nil {
		return fmt.Errorf("SetCertification: %w", err)
	}
	return nil
}

// DeleteRecette removes a recette only when no transfert references it.
func (s *RecetteService) DeleteRecette(ctx context.Context, recetteID, userID uuid.UUID) error {
	if _, err := s.GetRecetteForUser(ctx, recetteID, userID); err != nil {
		return fmt.Errorf("DeleteRecette: %w", err)
	}

	refs, err := s.recettes.CountTransferts(ctx, recetteID)
	if err != nil {
		return fmt.Errorf("DeleteRecette: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("DeleteRecette: %d transferts: %w", refs, domain.ErrRecetteReferenced)
	}

	if err := s.recettes.Delete(ctx, recetteID, userID); err != nil {
		return fmt.Errorf("DeleteRecette: %w", err)
	}
	return nil
}
