package fund

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/logging"
)

// maxRetries bounds the optimistic-concurrency loop. A conflict past the
// budget surfaces to the caller, who may retry the whole request.
const maxRetries = 3

type MovementRequest struct {
	UserID        uuid.UUID
	FondID        uuid.UUID
	CompteID      uuid.UUID
	Type          domain.MouvementType
	Montant       decimal.Decimal
	TransactionID *uuid.UUID
	Libelle       *string
}

// ApplyMovement records one debit or credit against a fund and moves its
// running total. The movement insert and the version-guarded total update
// commit in one transaction; on a version conflict the whole attempt is
// rolled back and retried against fresh state, so two concurrent debits can
// never both pass the sufficiency check on a stale total.
func (s *Service) ApplyMovement(ctx context.Context, req MovementRequest) (*domain.MouvementFond, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("ApplyMovement: %w", domain.ErrInvalidMovement)
	}
	if err := domain.ValidateMontant(req.Montant); err != nil {
		return nil, fmt.Errorf("ApplyMovement: %w", err)
	}
	if err := s.checkCompteOwnership(ctx, req.CompteID, req.UserID); err != nil {
		return nil, fmt.Errorf("ApplyMovement: compte: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		m, err := s.tryApplyMovement(ctx, req)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("ApplyMovement: %w", err)
		}
		lastErr = err
		logging.FromContext(ctx).Debug("movement retry after conflict",
			"fond_id", req.FondID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("ApplyMovement: retries exhausted: %w", lastErr)
}

func (s *Service) tryApplyMovement(ctx context.Context, req MovementRequest) (*domain.MouvementFond, error) {
	fond, err := s.GetFondForUser(ctx, req.FondID, req.UserID)
	if err != nil {
		return nil, err
	}

	var newRestant decimal.Decimal
	if req.Type == domain.MouvementDebit {
		newRestant = fond.MontantRestant.Sub(req.Montant)
		if newRestant.IsNegative() {
			return nil, fmt.Errorf("fond %s: %w", fond.ID, domain.ErrInsufficientFunds)
		}
	} else {
		newRestant = fond.MontantRestant.Add(req.Montant)
		if newRestant.GreaterThan(fond.MontantInitial) {
			return nil, fmt.Errorf("fond %s: %w", fond.ID, domain.ErrExceedsInitial)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	m := &domain.MouvementFond{
		ID:            uuid.New(),
		FondID:        fond.ID,
		UserID:        req.UserID,
		CompteID:      req.CompteID,
		Type:          req.Type,
		Montant:       req.Montant,
		TransactionID: req.TransactionID,
		Libelle:       req.Libelle,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.fonds.CreateMouvement(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("create mouvement: %w", err)
	}

	if err := s.fonds.UpdateRestant(ctx, tx, fond.ID, newRestant, fond.Version+1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return m, nil
}
