package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompteBancaire is a bank account as the reporting layer sees it: a current
// balance and a flag excluding it from the net total. Balance arithmetic on
// comptes happens outside this service.
type CompteBancaire struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Nom              string
	Solde            decimal.Decimal
	ExcludeFromTotal bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
