package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FondPartage is a sub-allocation carved out of a single credit transaction,
// drawable independently from one or more bank accounts. MontantInitial is
// immutable; MontantRestant is a materialized running total that must always
// be reconstructible by replaying the movement history.
type FondPartage struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	SourceCompteID      uuid.UUID
	PrimaryCompteID     *uuid.UUID
	TransactionSourceID uuid.UUID
	Libelle             string
	Description         *string
	MontantInitial      decimal.Decimal
	MontantRestant      decimal.Decimal
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type MouvementType string

const (
	MouvementDebit  MouvementType = "debit"
	MouvementCredit MouvementType = "credit"
)

func (t MouvementType) IsValid() bool {
	return t == MouvementDebit || t == MouvementCredit
}

// MouvementFond is one immutable debit or credit applied to a shared fund.
// Movements are never edited or deleted; corrections are made with
// compensating movements.
type MouvementFond struct {
	ID            uuid.UUID
	FondID        uuid.UUID
	UserID        uuid.UUID
	CompteID      uuid.UUID
	Type          MouvementType
	Montant       decimal.Decimal
	TransactionID *uuid.UUID
	Libelle       *string
	CreatedAt     time.Time
}
