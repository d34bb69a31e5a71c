package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartclass/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetToken(t *testing.T) {
	tokens := middleware.NewTokenService("secret", 24*time.Hour)
	h := NewHandler(tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.SetToken(rec, httptest.NewRequest(http.MethodPost, "/api/set-token", strings.NewReader(`{"email":"a@x.io","name":"A"}`)), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", claims.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	rec = httptest.NewRecorder()
	h.SetToken(rec, httptest.NewRequest(http.MethodPost, "/api/set-token", strings.NewReader(`{"name":"anon"}`)), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
