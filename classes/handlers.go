package classes

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartclass/middleware"
	"smartclass/models"
	"smartclass/mq"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	repo    Repository
	roles   middleware.RoleLookup
	events  *mq.Emitter
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(repo Repository, roles middleware.RoleLookup, events *mq.Emitter, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{repo: repo, roles: roles, events: events, log: log, timeout: timeout}
}

// CreateClass stores a new class awaiting review. Seats may be sent as a
// numeric string and are stored as an integer.
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in models.ClassInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	if in.AvailableSeats.Value < 0 || in.Price.Value < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "price and availableSeats must not be negative")
		return
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if !in.Status.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	// Only admins file classes for someone else or skip review.
	requester := utils.GetEmailFromRequest(r)
	if in.InstructorEmail != requester || in.Status != models.StatusPending {
		role, err := middleware.RequesterRole(r, h.roles)
		if err != nil {
			utils.RespondWithStoreError(w, h.log, "resolve role", err)
			return
		}
		if role != models.RoleAdmin {
			in.InstructorEmail, in.Status = requester, models.StatusPending
		} else if in.InstructorEmail == "" {
			in.InstructorEmail = requester
		}
	}

	class := &models.Class{
		Name:            in.Name,
		Description:     in.Description,
		Image:           in.Image,
		Price:           in.Price.Value,
		AvailableSeats:  in.AvailableSeats.Value,
		VideoLink:       in.VideoLink,
		InstructorName:  in.InstructorName,
		InstructorEmail: in.InstructorEmail,
		Status:          in.Status,
		Submitted:       in.Submitted,
	}
	res, err := h.repo.Create(ctx, class)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "create class", err)
		return
	}
	h.events.Emit(ctx, models.EventClassCreated, class.InstructorEmail, requester, class)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// ListApproved serves both /classes and /approved-classes.
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, Filter{Status: models.StatusApproved})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, Filter{})
}

func (h *Handler) ListByInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, Filter{InstructorEmail: ps.ByName("email")})
}

func (h *Handler) ListApprovedByInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, Filter{Status: models.StatusApproved, InstructorEmail: ps.ByName("email")})
}

func (h *Handler) ListPendingByInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, Filter{Status: models.StatusPending, InstructorEmail: ps.ByName("email")})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f Filter) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	classes, err := h.repo.Find(ctx, f)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "list classes", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	class, err := h.repo.ByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get class", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, class)
}

// ChangeStatus records a moderation decision and its reason.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var change models.StatusChange
	if err := utils.DecodeJSON(w, r, &change); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !change.Status.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "status must be one of pending, approved, denied")
		return
	}

	id := ps.ByName("id")
	res, err := h.repo.SetStatus(ctx, id, change)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "change class status", err)
		return
	}
	h.events.Emit(ctx, models.EventClassStatusChanged, id, utils.GetEmailFromRequest(r), change)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// UpdateClass edits a class and resets it to pending. Instructors may only
// edit their own classes.
func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in models.ClassInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.AvailableSeats.Value < 0 || in.Price.Value < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "price and availableSeats must not be negative")
		return
	}

	id := ps.ByName("id")
	existing, err := h.repo.ByID(ctx, id)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "update class", err)
		return
	}
	requester := utils.GetEmailFromRequest(r)
	if existing.InstructorEmail != requester {
		role, err := middleware.RequesterRole(r, h.roles)
		if err != nil {
			utils.RespondWithStoreError(w, h.log, "resolve role", err)
			return
		}
		if role != models.RoleAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "unauthorized role")
			return
		}
	}

	res, err := h.repo.Update(ctx, id, detailsOf(in))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "update class", err)
		return
	}
	h.events.Emit(ctx, models.EventClassUpdated, id, requester, nil)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// detailsOf keeps only the fields the edit carried.
func detailsOf(in models.ClassInput) Details {
	var d Details
	if in.Name != "" {
		d.Name = &in.Name
	}
	if in.Description != "" {
		d.Description = &in.Description
	}
	if in.VideoLink != "" {
		d.VideoLink = &in.VideoLink
	}
	if in.Price.Set {
		d.Price = &in.Price.Value
	}
	if in.AvailableSeats.Set {
		d.AvailableSeats = &in.AvailableSeats.Value
	}
	return d
}
