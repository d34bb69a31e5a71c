package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"smartclass/models"
)

// StatusFor maps repository errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithStoreError logs unexpected failures and writes the mapped error.
func RespondWithStoreError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Error(op+" failed", slog.Any("error", err))
		RespondWithError(w, code, "internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}
