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

type compteRepo interface {
	Create(ctx context.Context, c *domain.CompteBancaire) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CompteBancaire, error)
	SetExclusion(ctx context.Context, id, userID uuid.UUID, excluded bool) error
}

type CompteHandler struct {
	comptes compteRepo
}

func NewCompteHandler(comptes compteRepo) *CompteHandler {
	return &CompteHandler{comptes: comptes}
}

type createCompteRequest struct {
	Nom   string          `json:"nom"`
	Solde decimal.Decimal `json:"solde"`
}

func (r createCompteRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Nom == "" {
		errs = append(errs, FieldError{Field: "nom", Message: "required"})
	}
	if !r.Solde.Equal(r.Solde.Round(2)) {
		errs = append(errs, FieldError{Field: "solde", Message: "must have at most two decimal places"})
	}
	return errs
}

type exclusionRequest struct {
	ExcludeFromTotal bool `json:"exclude_from_total"`
}

type compteDTO struct {
	ID               uuid.UUID       `json:"id"`
	Nom              string          `json:"nom"`
	Solde            decimal.Decimal `json:"solde"`
	ExcludeFromTotal bool            `json:"exclude_from_total"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toCompteDTO(c *domain.CompteBancaire) compteDTO {
	return compteDTO{
		ID:               c.ID,
		Nom:              c.Nom,
		Solde:            c.Solde,
		ExcludeFromTotal: c.ExcludeFromTotal,
		CreatedAt:        c.CreatedAt,
	}
}

func (h *CompteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createCompteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	now := time.Now().UTC()
	compte := &domain.CompteBancaire{
		ID:        uuid.New(),
		UserID:    userID,
		Nom:       req.Nom,
		Solde:     req.Solde,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.comptes.Create(r.Context(), compte); err != nil {
		logging.FromContext(r.Context()).Error("failed to create compte", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCompteDTO(compte))
}

func (h *CompteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	comptes, err := h.comptes.GetByUserID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list comptes", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]compteDTO, len(comptes))
	for i := range comptes {
		dtos[i] = toCompteDTO(&comptes[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CompteHandler) SetExclusion(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	compteID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req exclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if err := h.comptes.SetExclusion(r.Context(), compteID, userID, req.ExcludeFromTotal); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"exclude_from_total": req.ExcludeFromTotal})
}
