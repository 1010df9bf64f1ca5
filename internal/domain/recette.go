package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recette is one income receipt: a pool of money spent down over time.
// Montant is fixed at creation. SoldeDisponible moves with every debit,
// transfer and reversal touching the pool and never drops below zero.
type Recette struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	Libelle                string
	Montant                decimal.Decimal
	SoldeDisponible        decimal.Decimal
	Version                int64
	ValidationBancaire     bool
	DateValidationBancaire *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
