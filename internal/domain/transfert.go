package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfert is a completed, balance-neutral movement of funds between two
// recettes. Deleting a transfert reverses the paired balance mutation.
type Transfert struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	RecetteSourceID      uuid.UUID
	RecetteDestinationID uuid.UUID
	Montant              decimal.Decimal
	Description          string
	DateTransfert        time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
