package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInsufficientFunds = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrSameRecette       = &AppError{http.StatusUnprocessableEntity, "SAME_RECETTE_NOT_ALLOWED", "Cannot transfer to the same recette"}
	ErrInvalidAmount     = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidScale      = &AppError{http.StatusBadRequest, "INVALID_AMOUNT_SCALE", "Amount must have at most two decimal places"}
	ErrInvalidMovement   = &AppError{http.StatusBadRequest, "INVALID_MOVEMENT_TYPE", "Movement type must be debit or credit"}
	ErrExceedsInitial    = &AppError{http.StatusUnprocessableEntity, "EXCEEDS_INITIAL_AMOUNT", "Credit would exceed the fund's initial amount"}
	ErrRecetteReferenced = &AppError{http.StatusConflict, "RECETTE_REFERENCED", "Recette is still referenced by transfers"}
	ErrVersionConflict   = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrEmailTaken        = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email already registered"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
