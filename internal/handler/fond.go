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
	"github.com/eddostedson/eddo-budg/internal/service/fund"
)

type fondService interface {
	Allocate(ctx context.Context, req fund.AllocateRequest) (*domain.FondPartage, error)
	ListAvailable(ctx context.Context, userID, compteID uuid.UUID) ([]domain.FondPartage, error)
	GetFondForUser(ctx context.Context, fondID, userID uuid.UUID) (*domain.FondPartage, error)
	Movements(ctx context.Context, fondID, userID uuid.UUID) ([]domain.MouvementFond, error)
	ApplyMovement(ctx context.Context, req fund.MovementRequest) (*domain.MouvementFond, error)
}

type FondHandler struct {
	fonds fondService
}

func NewFondHandler(fonds fondService) *FondHandler {
	return &FondHandler{fonds: fonds}
}

type allocateFondRequest struct {
	TransactionSourceID uuid.UUID       `json:"transaction_source_id"`
	SourceCompteID      uuid.UUID       `json:"source_compte_id"`
	PrimaryCompteID     *uuid.UUID      `json:"primary_compte_id"`
	Montant             decimal.Decimal `json:"montant"`
	Libelle             string          `json:"libelle"`
	Description         *string         `json:"description"`
}

func (r allocateFondRequest) Validate() []FieldError {
	var errs []FieldError
	if r.TransactionSourceID == uuid.Nil {
		errs = append(errs, FieldError{Field: "transaction_source_id", Message: "required"})
	}
	if r.SourceCompteID == uuid.Nil {
		errs = append(errs, FieldError{Field: "source_compte_id", Message: "required"})
	}
	if r.Libelle == "" {
		errs = append(errs, FieldError{Field: "libelle", Message: "required"})
	}
	if !r.Montant.IsPositive() {
		errs = append(errs, FieldError{Field: "montant", Message: "must be greater than zero"})
	} else if !r.Montant.Equal(r.Montant.Round(2)) {
		errs = append(errs, FieldError{Field: "montant", Message: "must have at most two decimal places"})
	}
	return errs
}

type movementRequest struct {
	CompteID      uuid.UUID       `json:"compte_id"`
	Type          string          `json:"type"`
	Montant       decimal.Decimal `json:"montant"`
	TransactionID *uuid.UUID      `json:"transaction_id"`
	Libelle       *string         `json:"libelle"`
}

func (r movementRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CompteID == uuid.Nil {
		errs = append(errs, FieldError{Field: "compte_id", Message: "required"})
	}
	if !domain.MouvementType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be debit or credit"})
	}
	if !r.Montant.IsPositive() {
		errs = append(errs, FieldError{Field: "montant", Message: "must be greater than zero"})
	} else if !r.Montant.Equal(r.Montant.Round(2)) {
		errs = append(errs, FieldError{Field: "montant", Message: "must have at most two decimal places"})
	}
	return errs
}

type fondDTO struct {
	ID                  uuid.UUID       `json:"id"`
	SourceCompteID      uuid.UUID       `json:"source_compte_id"`
	PrimaryCompteID     *uuid.UUID      `json:"primary_compte_id"`
	TransactionSourceID uuid.UUID       `json:"transaction_source_id"`
	Libelle             string          `json:"libelle"`
	Description         *string         `json:"description"`
	MontantInitial      decimal.Decimal `json:"montant_initial"`
	MontantRestant      decimal.Decimal `json:"montant_restant"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toFondDTO(f *domain.FondPartage) fondDTO {
	return fondDTO{
		ID:                  f.ID,
		SourceCompteID:      f.SourceCompteID,
		PrimaryCompteID:     f.PrimaryCompteID,
		TransactionSourceID: f.TransactionSourceID,
		Libelle:             f.Libelle,
		Description:         f.Description,
		MontantInitial:      f.MontantInitial,
		MontantRestant:      f.MontantRestant,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

type mouvementDTO struct {
	ID            uuid.UUID       `json:"id"`
	FondID        uuid.UUID       `json:"fond_id"`
	CompteID      uuid.UUID       `json:"compte_id"`
	Type          string          `json:"type"`
	Montant       decimal.Decimal `json:"montant"`
	TransactionID *uuid.UUID      `json:"transaction_id"`
	Libelle       *string         `json:"libelle"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toMouvementDTO(m *domain.MouvementFond) mouvementDTO {
	return mouvementDTO{
		ID:            m.ID,
		FondID:        m.FondID,
		CompteID:      m.CompteID,
		Type:          string(m.Type),
		Montant:       m.Montant,
		TransactionID: m.TransactionID,
		Libelle:       m.Libelle,
		CreatedAt:     m.CreatedAt,
	}
}

func (h *FondHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req allocateFondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	f, err := h.fonds.Allocate(r.Context(), fund.AllocateRequest{
		UserID:              userID,
		TransactionSourceID: req.TransactionSourceID,
		SourceCompteID:      req.SourceCompteID,
		PrimaryCompteID:     req.PrimaryCompteID,
		Montant:             req.Montant,
		Libelle:             req.Libelle,
		Description:         req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to allocate fond", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toFondDTO(f))
}

// ListAvailable returns the funds a compte can still draw from; the compte
// is identified by the required query parameter compte_id.
func (h *FondHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	compteID, err := uuid.Parse(r.URL.Query().Get("compte_id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "compte_id", Message: "a valid compte_id query parameter is required"}})
		return
	}

	fonds, err := h.fonds.ListAvailable(r.Context(), userID, compteID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list fonds", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]fondDTO, len(fonds))
	for i := range fonds {
		dtos[i] = toFondDTO(&fonds[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *FondHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	fondID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	f, err := h.fonds.GetFondForUser(r.Context(), fondID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toFondDTO(f))
}

func (h *FondHandler) Movements(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	fondID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	mouvements, err := h.fonds.Movements(r.Context(), fondID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]mouvementDTO, len(mouvements))
	for i := range mouvements {
		dtos[i] = toMouvementDTO(&mouvements[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *FondHandler) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	fondID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.fonds.ApplyMovement(r.Context(), fund.MovementRequest{
		UserID:        userID,
		FondID:        fondID,
		CompteID:      req.CompteID,
		Type:          domain.MouvementType(req.Type),
		Montant:       req.Montant,
		TransactionID: req.TransactionID,
		Libelle:       req.Libelle,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("movement failed",
			"fond_id", fondID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMouvementDTO(m))
}
