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
)

type recetteService interface {
	CreateRecette(ctx context.Context, userID uuid.UUID, libelle string, montant decimal.Decimal) (*domain.Recette, error)
	GetRecetteForUser(ctx context.Context, recetteID, userID uuid.UUID) (*domain.Recette, error)
	ListRecettes(ctx context.Context, userID uuid.UUID) ([]domain.Recette, error)
	Debit(ctx context.Context, recetteID, userID uuid.UUID, montant decimal.Decimal) (*domain.Recette, error)
	SetCertification(ctx context.Context, recetteID, userID uuid.UUID, certified bool) error
	DeleteRecette(ctx context.Context, recetteID, userID uuid.UUID) error
}

type RecetteHandler struct {
	recettes recetteService
}

func NewRecetteHandler(recettes recetteService) *RecetteHandler {
	return &RecetteHandler{recettes: recettes}
}

type createRecetteRequest struct {
	Libelle string          `json:"libelle"`
	Montant decimal.Decimal `json:"montant"`
}

func (r createRecetteRequest) Validate() []FieldError {
	var errs []FieldError
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

type debitRecetteRequest struct {
	Montant decimal.Decimal `json:"montant"`
}

type certificationRequest struct {
	ValidationBancaire bool `json:"validation_bancaire"`
}

type recetteDTO struct {
	ID                     uuid.UUID       `json:"id"`
	Libelle                string          `json:"libelle"`
	Montant                decimal.Decimal `json:"montant"`
	SoldeDisponible        decimal.Decimal `json:"solde_disponible"`
	ValidationBancaire     bool            `json:"validation_bancaire"`
	DateValidationBancaire *time.Time      `json:"date_validation_bancaire"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func toRecetteDTO(rec *domain.Recette) recetteDTO {
	return recetteDTO{
		ID:                     rec.ID,
		Libelle:                rec.Libelle,
		Montant:                rec.Montant,
		SoldeDisponible:        rec.SoldeDisponible,
		ValidationBancaire:     rec.ValidationBancaire,
		DateValidationBancaire: rec.DateValidationBancaire,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}
}

func (h *RecetteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createRecetteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	rec, err := h.recettes.CreateRecette(r.Context(), userID, req.Libelle, req.Montant)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create recette", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toRecetteDTO(rec))
}

func (h *RecetteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	recettes, err := h.recettes.ListRecettes(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list recettes", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]recetteDTO, len(recettes))
	for i := range recettes {
		dtos[i] = toRecetteDTO(&recettes[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *RecetteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	recetteID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	rec, err := h.recettes.GetRecetteForUser(r.Context(), recetteID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toRecetteDTO(rec))
}

func (h *RecetteHandler) Debit(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	recetteID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req debitRecetteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	rec, err := h.recettes.Debit(r.Context(), recetteID, userID, req.Montant)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toRecetteDTO(rec))
}

func (h *RecetteHandler) SetCertification(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	recetteID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req certificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if err := h.recettes.SetCertification(r.Context(), recetteID, userID, req.ValidationBancaire); err != nil {
		RespondDomainError(w, err)
		return
	}

	rec, err := h.recettes.GetRecetteForUser(r.Context(), recetteID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toRecetteDTO(rec))
}

func (h *RecetteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	recetteID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.recettes.DeleteRecette(r.Context(), recetteID, userID); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}
