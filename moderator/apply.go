package moderator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartclass/db"
	"smartclass/models"
	"smartclass/mq"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository stores instructor applications. Applications are append-only.
type Repository interface {
	Insert(ctx context.Context, a *models.Application) (models.InsertResult, error)
	FirstByEmail(ctx context.Context, email string) (*models.Application, error)
}

type MongoRepository struct {
	applied *mongo.Collection
}

func NewMongoRepository(store *db.Store) *MongoRepository {
	return &MongoRepository{applied: store.Applied}
}

func (m *MongoRepository) Insert(ctx context.Context, a *models.Application) (models.InsertResult, error) {
	res, err := m.applied.InsertOne(ctx, a)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert application: %w", err)
	}
	return models.FromInsert(res), nil
}

func (m *MongoRepository) FirstByEmail(ctx context.Context, email string) (*models.Application, error) {
	var a models.Application
	opts := options.FindOne().SetSort(bson.M{"_id": 1})
	if err := m.applied.FindOne(ctx, bson.M{"email": email}, opts).Decode(&a); err != nil {
		return nil, db.NotFound(err)
	}
	return &a, nil
}

type Handler struct {
	repo    Repository
	events  *mq.Emitter
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(repo Repository, events *mq.Emitter, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{repo: repo, events: events, log: log, timeout: timeout}
}

// ApplyInstructor files a request to teach. The application is stored under
// the requester's email when the body leaves it blank.
func (h *Handler) ApplyInstructor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var app models.Application
	if err := utils.DecodeJSON(w, r, &app); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	app.Email = strings.TrimSpace(app.Email)
	if app.Email == "" {
		app.Email = utils.GetEmailFromRequest(r)
	}
	app.ID = primitive.NilObjectID

	res, err := h.repo.Insert(ctx, &app)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "apply as instructor", err)
		return
	}
	h.events.Emit(ctx, models.EventInstructorApplied, app.Email, utils.GetEmailFromRequest(r), app)
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// GetApplication returns the first application filed under :email, or null.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	app, err := h.repo.FirstByEmail(ctx, ps.ByName("email"))
	if errors.Is(err, models.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "get application", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, app)
}
