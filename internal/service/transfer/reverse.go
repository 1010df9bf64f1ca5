package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/events"
	"github.com/eddostedson/eddo-budg/internal/logging"
)

// Reverse undoes a transfert: the destination gives the amount back to the
// source and the transfert row is removed. It fails closed when the
// destination has already spent the funds; money that left downstream cannot
// be clawed back.
func (s *Service) Reverse(ctx context.Context, transfertID, userID uuid.UUID) error {
	log := logging.FromContext(ctx)

	t, err := s.GetTransfertForUser(ctx, transfertID, userID)
	if err != nil {
		return fmt.Errorf("Reverse: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Reverse: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockRecettesInOrder(ctx, tx, s.recettes, t.RecetteSourceID, t.RecetteDestinationID)
	if err != nil {
		return fmt.Errorf("Reverse: %w", err)
	}

	source, destination := locked[t.RecetteSourceID], locked[t.RecetteDestinationID]

	if destination.SoldeDisponible.LessThan(t.Montant) {
		return fmt.Errorf("Reverse: destination: %w", domain.ErrInsufficientFunds)
	}

	if err := s.transferts.Delete(ctx, tx, t.ID); err != nil {
		return fmt.Errorf("Reverse: delete transfert: %w", err)
	}

	if err := s.recettes.UpdateSolde(ctx, tx, destination.ID, destination.SoldeDisponible.Sub(t.Montant), destination.Version+1); err != nil {
		return fmt.Errorf("Reverse: update destination: %w", err)
	}
	if err := s.recettes.UpdateSolde(ctx, tx, source.ID, source.SoldeDisponible.Add(t.Montant), source.Version+1); err != nil {
		return fmt.Errorf("Reverse: update source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Reverse: commit: %w", err)
	}

	log.Info("transfert reversed",
		"transfert_id", t.ID,
		"recette_source", t.RecetteSourceID,
		"recette_destination", t.RecetteDestinationID,
		"montant", t.Montant,
	)

	s.publish(ctx, events.KindTransfertAnnule, t)

	return nil
}
