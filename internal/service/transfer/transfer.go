package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/events"
	"github.com/eddostedson/eddo-budg/internal/logging"
)

type TransferRequest struct {
	UserID               uuid.UUID
	RecetteSourceID      uuid.UUID
	RecetteDestinationID uuid.UUID
	Montant              decimal.Decimal
	Description          string
	DateTransfert        time.Time
}

func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*domain.Transfert, error) {
	log := logging.FromContext(ctx)

	if err := validateTransfer(req); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	t, err := s.executeTransfer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfert completed",
		"transfert_id", t.ID,
		"recette_source", t.RecetteSourceID,
		"recette_destination", t.RecetteDestinationID,
		"montant", t.Montant,
	)

	s.publish(ctx, events.KindTransfertEffectue, t)

	return t, nil
}

func validateTransfer(req TransferRequest) error {
	if err := domain.ValidateMontant(req.Montant); err != nil {
		return fmt.Errorf("validateTransfer: %w", err)
	}
	if req.RecetteSourceID == uuid.Nil || req.RecetteDestinationID == uuid.Nil {
		return fmt.Errorf("validateTransfer: %w", domain.ErrInvalidRequest)
	}
	if req.RecetteSourceID == req.RecetteDestinationID {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSameRecette)
	}
	return nil
}

func (s *Service) executeTransfer(ctx context.Context, req TransferRequest) (*domain.Transfert, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockRecettesInOrder(ctx, tx, s.recettes, req.RecetteSourceID, req.RecetteDestinationID)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}

	source, destination := locked[req.RecetteSourceID], locked[req.RecetteDestinationID]

	if source.UserID != req.UserID || destination.UserID != req.UserID {
		return nil, fmt.Errorf("executeTransfer: %w", domain.ErrNotFound)
	}

	if source.SoldeDisponible.LessThan(req.Montant) {
		return nil, fmt.Errorf("executeTransfer: %w", domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	t := &domain.Transfert{
		ID:                   uuid.New(),
		UserID:               req.UserID,
		RecetteSourceID:      req.RecetteSourceID,
		RecetteDestinationID: req.RecetteDestinationID,
		Montant:              req.Montant,
		Description:          req.Description,
		DateTransfert:        req.DateTransfert,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.transferts.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("executeTransfer: create transfert: %w", err)
	}

	if err := s.recettes.UpdateSolde(ctx, tx, source.ID, source.SoldeDisponible.Sub(req.Montant), source.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: update source: %w", err)
	}
	if err := s.recettes.UpdateSolde(ctx, tx, destination.ID, destination.SoldeDisponible.Add(req.Montant), destination.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: update destination: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeTransfer: commit: %w", err)
	}

	return t, nil
}

// publish is best-effort: a dead broker must never fail a committed transfert.
func (s *Service) publish(ctx context.Context, kind string, t *domain.Transfert) {
	evt := events.TransfertEvent{
		Kind:                 kind,
		TransfertID:          t.ID,
		RecetteSourceID:      t.RecetteSourceID,
		RecetteDestinationID: t.RecetteDestinationID,
		Montant:              t.Montant,
		Timestamp:            time.Now().UTC(),
	}
	if err := s.events.PublishTransfert(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("transfert event publish failed",
			"transfert_id", t.ID, "kind", kind, "error", err)
	}
}
