package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/logging"
	"github.com/eddostedson/eddo-budg/internal/service/transfer"
)

type transfertService interface {
	Transfer(ctx context.Context, req transfer.TransferRequest) (*domain.Transfert, error)
	Reverse(ctx context.Context, transfertID, userID uuid.UUID) error
	GetTransfertForUser(ctx context.Context, transfertID, userID uuid.UUID) (*domain.Transfert, error)
	ListTransferts(ctx context.Context, userID uuid.UUID) ([]domain.Transfert, error)
}

type TransfertHandler struct {
	transferts transfertService
}

func NewTransfertHandler(transferts transfertService) *TransfertHandler {
	return &TransfertHandler{transferts: transferts}
}

type createTransfertRequest struct {
	RecetteSourceID      uuid.UUID       `json:"recette_source_id"`
	RecetteDestinationID uuid.UUID       `json:"recette_destination_id"`
	Montant              decimal.Decimal `json:"montant"`
	Description          string          `json:"description"`
	DateTransfert        *time.Time      `json:"date_transfert"`
}

func (r createTransfertRequest) Validate() []FieldError {
	var errs []FieldError
	if r.RecetteSourceID == uuid.Nil {
		errs = append(errs, FieldError{Field: "recette_source_id", Message: "required"})
	}
	if r.RecetteDestinationID == uuid.Nil {
		errs = append(errs, FieldError{Field: "recette_destination_id", Message: "required"})
	}
	if !r.Montant.IsPositive() {
		errs = append(errs, FieldError{Field: "montant", Message: "must be greater than zero"})
	} else if !r.Montant.Equal(r.Montant.Round(2)) {
		errs = append(errs, FieldError{Field: "montant", Message: "must have at most two decimal places"})
	}
	return errs
}

type transfertDTO struct {
	ID                   uuid.UUID       `json:"id"`
	RecetteSourceID      uuid.UUID       `json:"recette_source_id"`
	RecetteDestinationID uuid.UUID       `json:"recette_destination_id"`
	Montant              decimal.Decimal `json:"montant"`
	Description          string          `json:"description"`
	DateTransfert        time.Time       `json:"date_transfert"`
	CreatedAt            time.Time       `json:"created_at"`
}

func toTransfertDTO(t *domain.Transfert) transfertDTO {
	return transfertDTO{
		ID:                   t.ID,
		RecetteSourceID:      t.RecetteSourceID,
		RecetteDestinationID: t.RecetteDestinationID,
		Montant:              t.Montant,
		Description:          t.Description,
		DateTransfert:        t.DateTransfert,
		CreatedAt:            t.CreatedAt,
	}
}

func (h *TransfertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createTransfertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date := time.Now().UTC()
	if req.DateTransfert != nil {
		date = *req.DateTransfert
	}

	t, err := h.transferts.Transfer(r.Context(), transfer.TransferRequest{
		UserID:               userID,
		RecetteSourceID:      req.RecetteSourceID,
		RecetteDestinationID: req.RecetteDestinationID,
		Montant:              req.Montant,
		Description:          req.Description,
		DateTransfert:        date,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("transfert failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransfertDTO(t))
}

func (h *TransfertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	transferts, err := h.transferts.ListTransferts(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transferts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transfertDTO, len(transferts))
	for i := range transferts {
		dtos[i] = toTransfertDTO(&transferts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *TransfertHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	transfertID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	t, err := h.transferts.GetTransfertForUser(r.Context(), transfertID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransfertDTO(t))
}

// Reverse handles DELETE on a transfert: the paired balance mutation is
// undone before the row disappears.
func (h *TransfertHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	transfertID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.transferts.Reverse(r.Context(), transfertID, userID); err != nil {
		logging.FromContext(r.Context()).Error("transfert reversal failed",
			"transfert_id", transfertID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"reversed": true})
}
