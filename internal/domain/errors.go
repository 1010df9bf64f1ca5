package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidScale      = errors.New("amount must have at most two decimal places")
	ErrSameRecette       = errors.New("cannot transfer to the same recette")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrVersionConflict   = errors.New("optimistic lock conflict")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidMovement   = errors.New("movement type must be debit or credit")
	ErrExceedsInitial    = errors.New("credit would exceed the fund's initial amount")
	ErrRecetteReferenced = errors.New("recette is still referenced by transfers")
	ErrEmailTaken        = errors.New("email already registered")
)
