package cart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"smartclass/db"
	"smartclass/middleware"
	"smartclass/models"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	repo    Repository
	roles   middleware.RoleLookup
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(repo Repository, roles middleware.RoleLookup, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{repo: repo, roles: roles, log: log, timeout: timeout}
}

// AddToCart inserts an entry into the requester's cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var item models.CartItem
	if err := utils.DecodeJSON(w, r, &item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if item.ClassID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "classId is required")
		return
	}
	item.UserMail = utils.GetEmailFromRequest(r)
	item.ID = primitive.NilObjectID

	res, err := h.repo.Add(ctx, &item)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "add to cart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GetCartItem tells whether ?email= already has class :id in the cart.
// Absent entries are answered with null. Only admins may ask about
// another user's cart.
func (h *Handler) GetCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	requester := utils.GetEmailFromRequest(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		email = requester
	}
	if email != requester {
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
	item, err := h.repo.Item(ctx, ps.ByName("id"), email)
	if errors.Is(err, models.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get cart item", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"_id": item.ID, "classId": item.ClassID})
}

// GetCart returns the classes referenced by the user's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	hexes, err := h.repo.ClassIDs(ctx, ps.ByName("email"))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get cart", err)
		return
	}
	ids, err := db.ObjectIDs(hexes)
	if err != nil {
		h.log.Warn("cart references a malformed class id", slog.Any("error", err))
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	classes, err := h.repo.Classes(ctx, ids)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get cart classes", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, classes)
}

// DeleteCartItem removes one of the requester's entries for class :id.
func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.repo.Remove(ctx, ps.ByName("id"), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "delete cart item", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}
