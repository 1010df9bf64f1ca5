package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/core"
	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/logging"
)

type recetteReader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Recette, error)
}

type compteReader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CompteBancaire, error)
}

// TotauxHandler serves the dashboard figures. It reads one snapshot of the
// caller's rows and hands it to the pure aggregation functions; nothing here
// mutates state.
type TotauxHandler struct {
	recettes recetteReader
	comptes  compteReader
}

func NewTotauxHandler(recettes recetteReader, comptes compteReader) *TotauxHandler {
	return &TotauxHandler{recettes: recettes, comptes: comptes}
}

type totauxDTO struct {
	TotalDisponible   decimal.Decimal `json:"total_disponible"`
	TotalCertifie     decimal.Decimal `json:"total_certifie"`
	NetHorsExclusions decimal.Decimal `json:"net_hors_exclusions"`
}

func (h *TotauxHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	recettes, err := h.recettes.GetByUserID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load recettes for totaux", "error", err)
		RespondDomainError(w, err)
		return
	}

	comptes, err := h.comptes.GetByUserID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load comptes for totaux", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, totauxDTO{
		TotalDisponible:   core.TotalDisponible(recettes),
		TotalCertifie:     core.TotalCertifie(recettes),
		NetHorsExclusions: core.NetHorsExclusions(comptes),
	})
}
