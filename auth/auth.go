package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"smartclass/middleware"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	tokens *middleware.TokenService
	log    *slog.Logger
}

func NewHandler(tokens *middleware.TokenService, log *slog.Logger) *Handler {
	return &Handler{tokens: tokens, log: log}
}

// SetToken signs whatever identity the client presents. The identity
// provider lives on the client; this endpoint only wraps its result.
func (h *Handler) SetToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.tokens.Sign(middleware.Claims{Email: body.Email, Name: body.Name})
	if err != nil {
		h.log.Error("sign token", slog.Any("error", err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}
