package utils

import (
	"net/http"

	"smartclass/globals"
)

// GetEmailFromRequest returns the authenticated requester's email, or "".
func GetEmailFromRequest(r *http.Request) string {
	email, ok := r.Context().Value(globals.EmailKey).(string)
	if !ok {
		return ""
	}
	return email
}

// GetRequestID returns the id assigned by the logging middleware.
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(globals.RequestIDKey).(string)
	return id
}
