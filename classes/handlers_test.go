package classes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartclass/globals"
	"smartclass/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memRepo struct {
	classes []models.Class
}

func (m *memRepo) Create(_ context.Context, c *models.Class) (models.InsertResult, error) {
	c.ID = primitive.NewObjectID()
	m.classes = append(m.classes, *c)
	return models.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (m *memRepo) Find(_ context.Context, f Filter) ([]models.Class, error) {
	out := []models.Class{}
	for _, c := range m.classes {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.InstructorEmail != "" && c.InstructorEmail != f.InstructorEmail {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) find(id string) (*models.Class, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidID
	}
	for i := range m.classes {
		if m.classes[i].ID == oid {
			return &m.classes[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memRepo) ByID(_ context.Context, id string) (*models.Class, error) {
	c, err := m.find(id)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) SetStatus(_ context.Context, id string, change models.StatusChange) (models.UpdateResult, error) {
	c, err := m.find(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	c.Status, c.Reason = change.Status, change.Reason
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memRepo) Update(_ context.Context, id string, d Details) (models.UpdateResult, error) {
	c, err := m.find(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	set := d.bson()
	if v, ok := set["name"].(string); ok {
		c.Name = v
	}
	if v, ok := set["description"].(string); ok {
		c.Description = v
	}
	if v, ok := set["price"].(float64); ok {
		c.Price = v
	}
	if v, ok := set["availableSeats"].(int); ok {
		c.AvailableSeats = v
	}
	if v, ok := set["videoLink"].(string); ok {
		c.VideoLink = v
	}
	c.Status = set["status"].(models.ClassStatus)
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type fakeRoles map[string]models.Role

func (f fakeRoles) RoleByEmail(_ context.Context, email string) (models.Role, error) {
	if role, ok := f[email]; ok {
		return role, nil
	}
	return "", models.ErrNotFound
}

var roles = fakeRoles{
	"instr@x.io": models.RoleInstructor,
	"other@x.io": models.RoleInstructor,
	"admin@x.io": models.RoleAdmin,
}

func newTestHandler(repo Repository) *Handler {
	return NewHandler(repo, roles, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func do(h httprouter.Handle, method, target, body, email string, ps httprouter.Params) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if email != "" {
		req = req.WithContext(context.WithValue(req.Context(), globals.EmailKey, email))
	}
	rec := httptest.NewRecorder()
	h(rec, req, ps)
	return rec
}

func idParam(id primitive.ObjectID) httprouter.Params {
	return httprouter.Params{{Key: "id", Value: id.Hex()}}
}

func TestCreateClassSeatsFromString(t *testing.T) {
	repo := &memRepo{}
	h := newTestHandler(repo)

	rec := do(h.CreateClass, http.MethodPost, "/new-class",
		`{"name":"Go 101","price":"500","availableSeats":"30"}`, "instr@x.io", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.classes, 1)

	c := repo.classes[0]
	assert.Equal(t, 30, c.AvailableSeats)
	assert.Equal(t, 500.0, c.Price)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, "instr@x.io", c.InstructorEmail)
	assert.Zero(t, c.TotalEnrolled)
}

func TestCreateClassRejectsMalformedSeats(t *testing.T) {
	repo := &memRepo{}
	h := newTestHandler(repo)

	for _, body := range []string{
		`{"name":"Go","availableSeats":"thirty"}`,
		`{"name":"Go","availableSeats":-1}`,
		`{"availableSeats":3}`,
		`{"name":"Go","status":"archived"}`,
	} {
		rec := do(h.CreateClass, http.MethodPost, "/new-class", body, "instr@x.io", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, repo.classes)
}

func TestApprovedListingAndDenial(t *testing.T) {
	c1, c2, c3 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	repo := &memRepo{classes: []models.Class{
		{ID: c1, Name: "C1", Status: models.StatusApproved, InstructorEmail: "instr@x.io"},
		{ID: c2, Name: "C2", Status: models.StatusApproved, InstructorEmail: "instr@x.io"},
		{ID: c3, Name: "C3", Status: models.StatusPending, InstructorEmail: "instr@x.io"},
	}}
	h := newTestHandler(repo)

	names := func(rec *httptest.ResponseRecorder) []string {
		var got []models.Class
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		out := []string{}
		for _, c := range got {
			out = append(out, c.Name)
		}
		return out
	}

	rec := do(h.ListApproved, http.MethodGet, "/classes", "", "", nil)
	assert.ElementsMatch(t, []string{"C1", "C2"}, names(rec))

	rec = do(h.ChangeStatus, http.MethodPut, "/change-status/x",
		`{"status":"denied","reason":"incomplete syllabus"}`, "admin@x.io", idParam(c2))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":1,"modifiedCount":1,"upsertedCount":0,"upsertedId":null}`, rec.Body.String())
	assert.Equal(t, "incomplete syllabus", repo.classes[1].Reason)

	rec = do(h.ListApproved, http.MethodGet, "/approved-classes", "", "", nil)
	assert.Equal(t, []string{"C1"}, names(rec))

	rec = do(h.ListPendingByInstructor, http.MethodGet, "/pending-classes/instr@x.io", "", "instr@x.io",
		httprouter.Params{{Key: "email", Value: "instr@x.io"}})
	assert.Equal(t, []string{"C3"}, names(rec))

	rec = do(h.ListAll, http.MethodGet, "/classes-manage", "", "admin@x.io", nil)
	assert.Len(t, names(rec), 3)
}

func TestChangeStatusErrors(t *testing.T) {
	h := newTestHandler(&memRepo{})

	rec := do(h.ChangeStatus, http.MethodPut, "/change-status/x", `{"status":"denied"}`, "admin@x.io", idParam(primitive.NewObjectID()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h.ChangeStatus, http.MethodPut, "/change-status/x", `{"status":"maybe"}`, "admin@x.io", idParam(primitive.NewObjectID()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.ChangeStatus, http.MethodPut, "/change-status/x", `{"status":"denied"}`, "admin@x.io", httprouter.Params{{Key: "id", Value: "nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateClassOwnership(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &memRepo{classes: []models.Class{
		{ID: id, Name: "C1", Status: models.StatusApproved, InstructorEmail: "instr@x.io", AvailableSeats: 10},
	}}
	h := newTestHandler(repo)
	body := `{"name":"C1 v2","price":650,"availableSeats":"12","videoLink":"https://v"}`

	rec := do(h.UpdateClass, http.MethodPut, "/update-class/x", body, "other@x.io", idParam(id))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "C1", repo.classes[0].Name)

	rec = do(h.UpdateClass, http.MethodPut, "/update-class/x", body, "instr@x.io", idParam(id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "C1 v2", repo.classes[0].Name)
	assert.Equal(t, 12, repo.classes[0].AvailableSeats)
	assert.Equal(t, models.StatusPending, repo.classes[0].Status)

	rec = do(h.UpdateClass, http.MethodPut, "/update-class/x", body, "admin@x.io", idParam(id))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h.UpdateClass, http.MethodPut, "/update-class/x", body, "admin@x.io", idParam(primitive.NewObjectID()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateClassKeepsOmittedFields(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &memRepo{classes: []models.Class{
		{ID: id, Name: "C1", Description: "intro", Price: 500, AvailableSeats: 10,
			Status: models.StatusApproved, InstructorEmail: "instr@x.io"},
	}}
	h := newTestHandler(repo)

	rec := do(h.UpdateClass, http.MethodPut, "/update-class/x", `{"name":"C1 v2"}`, "instr@x.io", idParam(id))
	require.Equal(t, http.StatusOK, rec.Code)
	c := repo.classes[0]
	assert.Equal(t, "C1 v2", c.Name)
	assert.Equal(t, "intro", c.Description)
	assert.Equal(t, 500.0, c.Price)
	assert.Equal(t, 10, c.AvailableSeats)
	assert.Equal(t, models.StatusPending, c.Status)

	rec = do(h.UpdateClass, http.MethodPut, "/update-class/x", `{"availableSeats":0}`, "instr@x.io", idParam(id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, repo.classes[0].AvailableSeats)
	assert.Equal(t, 500.0, repo.classes[0].Price)
}

func TestDetailsBSON(t *testing.T) {
	assert.Equal(t, bson.M{"status": models.StatusPending}, Details{}.bson())

	seats, name := 12, "Go"
	set := Details{Name: &name, AvailableSeats: &seats}.bson()
	assert.Equal(t, bson.M{"status": models.StatusPending, "name": "Go", "availableSeats": 12}, set)
}

func TestCreateClassOwnership(t *testing.T) {
	repo := &memRepo{}
	h := newTestHandler(repo)

	rec := do(h.CreateClass, http.MethodPost, "/new-class",
		`{"name":"Go","instructorEmail":"victim@x.io","status":"approved"}`, "instr@x.io", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.classes, 1)
	assert.Equal(t, "instr@x.io", repo.classes[0].InstructorEmail)
	assert.Equal(t, models.StatusPending, repo.classes[0].Status)

	rec = do(h.CreateClass, http.MethodPost, "/new-class",
		`{"name":"Rust","instructorEmail":"other@x.io","status":"approved"}`, "admin@x.io", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.classes, 2)
	assert.Equal(t, "other@x.io", repo.classes[1].InstructorEmail)
	assert.Equal(t, models.StatusApproved, repo.classes[1].Status)
}

func TestGetClass(t *testing.T) {
	id := primitive.NewObjectID()
	h := newTestHandler(&memRepo{classes: []models.Class{{ID: id, Name: "C1"}}})

	rec := do(h.GetClass, http.MethodGet, "/class/x", "", "", idParam(id))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"C1"`)

	rec = do(h.GetClass, http.MethodGet, "/class/x", "", "", idParam(primitive.NewObjectID()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterBSON(t *testing.T) {
	assert.Empty(t, Filter{}.bson())
	q := Filter{Status: models.StatusApproved, InstructorEmail: "t@x.io"}.bson()
	assert.Equal(t, models.StatusApproved, q["status"])
	assert.Equal(t, "t@x.io", q["instructorEmail"])
}
