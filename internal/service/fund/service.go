// Package fund manages sub-allocations carved out of a single credit
// transaction. The movement log is the source of truth; montant_restant is a
// materialized running total written in the same transaction as the movement
// that changes it.
package fund

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

type fondRepo interface {
	Create(ctx context.Context, f *domain.FondPartage) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FondPartage, error)
	ListAvailable(ctx context.Context, userID, compteID uuid.UUID) ([]domain.FondPartage, error)
	UpdateRestant(ctx context.Context, tx *sql.Tx, id uuid.UUID, newRestant decimal.Decimal, newVersion int64) error
	CreateMouvement(ctx context.Context, tx *sql.Tx, m *domain.MouvementFond) error
	GetMouvements(ctx context.Context, fondID uuid.UUID) ([]domain.MouvementFond, error)
}

type compteRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CompteBancaire, error)
}

type Service struct {
	fonds   fondRepo
	comptes compteRepo
	db      *sql.DB
}

func NewService(fonds fondRepo, comptes compteRepo, db *sql.DB) *Service {
	return &Service{fonds: fonds, comptes: comptes, db: db}
}

type AllocateRequest struct {
	UserID              uuid.UUID
	TransactionSourceID uuid.UUID
	SourceCompteID      uuid.UUID
	PrimaryCompteID     *uuid.UUID
	Montant             decimal.Decimal
	Libelle             string
	Description         *string
}

// Allocate carves a new shared fund out of a credit transaction, starting
// with the full amount available.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (*domain.FondPartage, error) {
	if err := domain.ValidateMontant(req.Montant); err != nil {
		return nil, fmt.Errorf("Allocate: %w", err)
	}
	if req.Libelle == "" || req.TransactionSourceID == uuid.Nil {
		return nil, fmt.Errorf("Allocate: %w", domain.ErrInvalidRequest)
	}

	if err := s.checkCompteOwnership(ctx, req.SourceCompteID, req.UserID); err != nil {
		return nil, fmt.Errorf("Allocate: source compte: %w", err)
	}
	if req.PrimaryCompteID != nil {
		if err := s.checkCompteOwnership(ctx, *req.PrimaryCompteID, req.UserID); err != nil {
			return nil, fmt.Errorf("Allocate: primary compte: %w", err)
		}
	}

	now := time.Now().UTC()
	f := &domain.FondPartage{
		ID:                  uuid.New(),
		UserID:              req.UserID,
		SourceCompteID:      req.SourceCompteID,
		PrimaryCompteID:     req.PrimaryCompteID,
		TransactionSourceID: req.TransactionSourceID,
		Libelle:             req.Libelle,
		Description:         req.Description,
		MontantInitial:      req.Montant,
		MontantRestant:      req.Montant,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.fonds.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("Allocate: %w", err)
	}

	logging.FromContext(ctx).Info("fond partage allocated",
		"fond_id", f.ID,
		"source_compte", f.SourceCompteID,
		"montant_initial", f.MontantInitial,
	)

	return f, nil
}

// ListAvailable returns the funds the compte can still draw from, newest
// first. The snapshot is not restartable across mutation; callers re-query
// after any movement.
func (s *Service) ListAvailable(ctx context.Context, userID, compteID uuid.UUID) ([]domain.FondPartage, error) {
	fonds, err := s.fonds.ListAvailable(ctx, userID, compteID)
	if err != nil {
		return nil, fmt.Errorf("ListAvailable: %w", err)
	}
	return fonds, nil
}

func (s *Service) GetFondForUser(ctx context.Context, fondID, userID uuid.UUID) (*domain.FondPartage, error) {
	f, err := s.fonds.GetByID(ctx, fondID)
	if err != nil {
		return nil, fmt.Errorf("GetFondForUser: %w", err)
	}
	if f.UserID != userID {
		return nil, fmt.Errorf("GetFondForUser: %w", domain.ErrNotFound)
	}
	return f, nil
}

func (s *Service) Movements(ctx context.Context, fondID, userID uuid.UUID) ([]domain.MouvementFond, error) {
	if _, err := s.GetFondForUser(ctx, fondID, userID); err != nil {
		return nil, fmt.Errorf("Movements: %w", err)
	}
	mouvements, err := s.fonds.GetMouvements(ctx, fondID)
	if err != nil {
		return nil, fmt.Errorf("Movements: %w", err)
	}
	return mouvements, nil
}

func (s *Service) checkCompteOwnership(ctx context.Context, compteID, userID uuid.UUID) error {
	c, err := s.comptes.GetByID(ctx, compteID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return domain.ErrNotFound
	}
	return nil
}
