package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eddostedson/eddo-budg/internal/auth"
)

func callerID(r *http.Request) (uuid.UUID, *AppError) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return userID, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}
