package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartclass/models"
	"smartclass/mq"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	repo    Repository
	events  *mq.Emitter
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(repo Repository, events *mq.Emitter, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{repo: repo, events: events, log: log, timeout: timeout}
}

// CreateUser registers a profile. Everyone signs up as a student; roles are
// granted by an admin through UpdateUser.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var u models.User
	if err := utils.DecodeJSON(w, r, &u); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	if u.Role != "" {
		u.Role = models.RoleStudent
	}

	res, err := h.repo.Create(ctx, &u)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "create user", err)
		return
	}
	h.events.Emit(ctx, models.EventUserCreated, u.Email, u.Email, nil)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.repo.List(ctx)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "list users", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	u, err := h.repo.ByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get user", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// GetUserByEmail answers null for unknown emails; the client uses that to
// decide whether to register.
func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	u, err := h.repo.ByEmail(ctx, ps.ByName("email"))
	if errors.Is(err, models.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get user by email", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := ps.ByName("id")
	res, err := h.repo.Delete(ctx, id)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "delete user", err)
		return
	}
	if res.DeletedCount > 0 {
		h.events.Emit(ctx, models.EventUserDeleted, id, utils.GetEmailFromRequest(r), nil)
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in models.UserUpdate
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Option == "" || !in.Option.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "role must be one of student, instructor, admin")
		return
	}

	res, err := h.repo.Update(ctx, ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "update user", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.repo.Instructors(ctx)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "list instructors", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}
