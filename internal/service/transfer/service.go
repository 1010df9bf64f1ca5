// Package transfer moves funds between two recettes as a single unit of
// work: both balance mutations and the transfert row commit together or not
// at all.
package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/events"
)

type transfertRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transfert) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfert, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Transfert, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type recetteRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Recette, error)
	UpdateSolde(ctx context.Context, tx *sql.Tx, id uuid.UUID, newSolde decimal.Decimal, newVersion int64) error
}

type Service struct {
	transferts transfertRepo
	recettes   recetteRepo
	db         *sql.DB
	events     events.Publisher
}

func NewService(transferts transfertRepo, recettes recetteRepo, db *sql.DB, publisher events.Publisher) *Service {
	return &Service{
		transferts: transferts,
		recettes:   recettes,
		db:         db,
		events:     publisher,
	}
}

func (s *Service) GetTransfertForUser(ctx context.Context, transfertID, userID uuid.UUID) (*domain.Transfert, error) {
	t, err := s.transferts.GetByID(ctx, transfertID)
	if err != nil {
		return nil, fmt.Errorf("GetTransfertForUser: %w", err)
	}
	if t.UserID != userID {
		return nil, fmt.Errorf("GetTransfertForUser: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (s *Service) ListTransferts(ctx context.Context, userID uuid.UUID) ([]domain.Transfert, error) {
	transferts, err := s.transferts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransferts: %w", err)
	}
	return transferts, nil
}

// lockRecettesInOrder takes row locks in UUID order so two concurrent
// transferts touching the same pair cannot deadlock.
func lockRecettesInOrder(ctx context.Context, tx *sql.Tx, recettes recetteRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Recette, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Recette, len(ids))
	for _, id := range sorted {
		rec, err := recettes.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockRecettesInOrder: %w", err)
		}
		result[id] = rec
	}
	return result, nil
}
