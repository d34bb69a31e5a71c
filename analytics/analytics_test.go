package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartclass/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func stageNames(t *testing.T, p []bson.D) []string {
	t.Helper()
	names := make([]string, 0, len(p))
	for _, stage := range p {
		require.Len(t, stage, 1)
		names = append(names, stage[0].Key)
	}
	return names
}

func TestPopularInstructorsPipeline(t *testing.T) {
	p := PopularInstructorsPipeline()
	assert.Equal(t, []string{"$group", "$lookup", "$match", "$project", "$sort", "$limit"}, stageNames(t, p))

	assert.Equal(t, bson.D{{Key: "instructor.role", Value: models.RoleInstructor}}, p[2][0].Value)
	assert.Equal(t, topN, p[5][0].Value)

	lookup := p[1][0].Value.(bson.D).Map()
	assert.Equal(t, "users", lookup["from"])
	assert.Equal(t, "email", lookup["foreignField"])
}

func TestEnrolledClassesPipeline(t *testing.T) {
	p := EnrolledClassesPipeline("s@x.io")
	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$lookup", "$project"}, stageNames(t, p))
	assert.Equal(t, bson.D{{Key: "userEmail", Value: "s@x.io"}}, p[0][0].Value)

	classes := p[1][0].Value.(bson.D).Map()
	assert.Equal(t, "classes", classes["from"])
	assert.Equal(t, "classesId", classes["localField"])

	instructor := p[3][0].Value.(bson.D).Map()
	assert.Equal(t, "classes.instructorEmail", instructor["localField"])
}

type fakeViews struct {
	email string
	err   error
}

func (f *fakeViews) PopularClasses(context.Context) ([]models.Class, error) {
	return []models.Class{{Name: "C1", TotalEnrolled: 9}}, f.err
}

func (f *fakeViews) PopularInstructors(context.Context) ([]models.PopularInstructor, error) {
	return []models.PopularInstructor{{Instructor: &models.User{Email: "t@x.io"}, TotalEnrolled: 9}}, f.err
}

func (f *fakeViews) EnrolledClasses(_ context.Context, email string) ([]models.EnrolledClass, error) {
	f.email = email
	return []models.EnrolledClass{}, f.err
}

func TestHandlers(t *testing.T) {
	views := &fakeViews{}
	h := NewHandler(views, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)

	rec := httptest.NewRecorder()
	h.PopularInstructors(rec, httptest.NewRequest(http.MethodGet, "/popular-instructors", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalEnrolled":9`)

	rec = httptest.NewRecorder()
	h.EnrolledClasses(rec, httptest.NewRequest(http.MethodGet, "/enrolled-classes/s@x.io", nil),
		httprouter.Params{{Key: "email", Value: "s@x.io"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s@x.io", views.email)

	views.err = errors.New("down")
	rec = httptest.NewRecorder()
	h.PopularClasses(rec, httptest.NewRequest(http.MethodGet, "/popular_classes", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
