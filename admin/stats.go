package admin

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
)

// StatsSource computes dashboard counters.
type StatsSource interface {
	Stats(ctx context.Context) (models.AdminStats, error)
}

type MongoStats struct {
	store *db.Store
}

func NewMongoStats(store *db.Store) *MongoStats {
	return &MongoStats{store: store}
}

func (m *MongoStats) Stats(ctx context.Context) (models.AdminStats, error) {
	var (
		s   models.AdminStats
		err error
	)
	counts := []struct {
		dst    *int64
		count  func() (int64, error)
		metric string
	}{
		{&s.ApprovedClasses, func() (int64, error) {
			return m.store.Classes.CountDocuments(ctx, bson.M{"status": models.StatusApproved})
		}, "approved classes"},
		{&s.PendingClasses, func() (int64, error) {
			return m.store.Classes.CountDocuments(ctx, bson.M{"status": models.StatusPending})
		}, "pending classes"},
		{&s.Instructors, func() (int64, error) {
			return m.store.Users.CountDocuments(ctx, bson.M{"role": models.RoleInstructor})
		}, "instructors"},
		{&s.TotalClasses, func() (int64, error) {
			return m.store.Classes.CountDocuments(ctx, bson.M{})
		}, "classes"},
		{&s.TotalEnrolled, func() (int64, error) {
			return m.store.Enrolled.CountDocuments(ctx, bson.M{})
		}, "enrollments"},
	}
	for _, c := range counts {
		if *c.dst, err = c.count(); err != nil {
			return models.AdminStats{}, fmt.Errorf("count %s: %w", c.metric, err)
		}
	}
	return s, nil
}

// Handler serves the admin dashboard.
type Handler struct {
	stats   StatsSource
	hub     *Hub
	log     *slog.Logger
	timeout time.Duration
}

func NewHandler(stats StatsSource, hub *Hub, log *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{stats: stats, hub: hub, log: log, timeout: timeout}
}

// Stats returns counts of approved and pending classes, instructors, all
// classes and enrollments.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		utils.RespondWithStoreError(w, h.log, "admin stats", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
