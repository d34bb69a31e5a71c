package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartclass/db"
	"smartclass/models"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Views are the read-only aggregations behind the landing and dashboard pages.
type Views interface {
	PopularClasses(ctx context.Context) ([]models.Class, error)
	PopularInstructors(ctx context.Context) ([]models.PopularInstructor, error)
	EnrolledClasses(ctx context.Context, email string) ([]models.EnrolledClass, error)
}

type MongoViews struct {
	store *db.Store
}

func NewMongoViews(store *db.Store) *MongoViews {
	return &MongoViews{store: store}
}

func (v *MongoViews) PopularClasses(ctx context.Context) ([]models.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "totalEnrolled", Value: -1}}).SetLimit(topN)
	cur, err := v.store.Classes.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("popular classes: %w", err)
	}
	classes := []models.Class{}
	if err := cur.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode popular classes: %w", err)
	}
	return classes, nil
}

func (v *MongoViews) PopularInstructors(ctx context.Context) ([]models.PopularInstructor, error) {
	cur, err := v.store.Classes.Aggregate(ctx, PopularInstructorsPipeline())
	if err != nil {
		return nil, fmt.Errorf("popular instructors: %w", err)
	}
	rows := []models.PopularInstructor{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode popular instructors: %w", err)
	}
	return rows, nil
}

func (v *MongoViews) EnrolledClasses(ctx context.Context, email string) ([]models.EnrolledClass, error) {
	cur, err := v.store.Enrolled.Aggregate(ctx, EnrolledClassesPipeline(email))
	if err != nil {
		return nil, fmt.Errorf("enrolled classes: %w", err)
	}
	rows := []models.EnrolledClass{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode enrolled classes: %w", err)
	}
	return rows, nil
}

type Handler struct {
	views   Views
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(views Views, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{views: views, log: log, timeout: timeout}
}

func (h *Handler) PopularClasses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	classes, err := h.views.PopularClasses(ctx)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "popular classes", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *Handler) PopularInstructors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rows, err := h.views.PopularInstructors(ctx)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "popular instructors", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *Handler) EnrolledClasses(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rows, err := h.views.EnrolledClasses(ctx, ps.ByName("email"))
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "enrolled classes", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}
