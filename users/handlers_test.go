package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartclass/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memRepo struct {
	users []models.User
}

func (m *memRepo) Create(_ context.Context, u *models.User) (models.InsertResult, error) {
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return models.InsertResult{Acknowledged: true, InsertedID: u.ID}, nil
}

func (m *memRepo) List(context.Context) ([]models.User, error) { return m.users, nil }

func (m *memRepo) ByID(_ context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			return &m.users[i], nil
		}
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, models.ErrInvalidID
	}
	return nil, models.ErrNotFound
}

func (m *memRepo) ByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) (models.DeleteResult, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return models.DeleteResult{Acknowledged: true}, nil
}

func (m *memRepo) Update(_ context.Context, id string, in models.UserUpdate) (models.UpdateResult, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			m.users[i].Name = in.Name
			m.users[i].Email = in.Email
			m.users[i].Role = in.Option
			return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return models.UpdateResult{}, models.ErrNotFound
}

func (m *memRepo) Instructors(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == models.RoleInstructor {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestHandler(repo Repository) *Handler {
	return NewHandler(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func do(h httprouter.Handle, method, target, body string, ps httprouter.Params) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, rd), ps)
	return rec
}

func TestCreateUserForcesStudentRole(t *testing.T) {
	repo := &memRepo{}
	h := newTestHandler(repo)

	rec := do(h.CreateUser, http.MethodPost, "/new-user", `{"name":"Eve","email":"eve@x.io","role":"admin"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"acknowledged":true`)
	require.Len(t, repo.users, 1)
	assert.Equal(t, models.RoleStudent, repo.users[0].Role)

	rec = do(h.CreateUser, http.MethodPost, "/new-user", `{"name":"Bob","email":"bob@x.io"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Role(""), repo.users[1].Role)

	rec = do(h.CreateUser, http.MethodPost, "/new-user", `{"name":"nobody"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserByEmail(t *testing.T) {
	repo := &memRepo{users: []models.User{{ID: primitive.NewObjectID(), Email: "a@x.io", Name: "A"}}}
	h := newTestHandler(repo)

	rec := do(h.GetUserByEmail, http.MethodGet, "/user/a@x.io", "", httprouter.Params{{Key: "email", Value: "a@x.io"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"A"`)

	rec = do(h.GetUserByEmail, http.MethodGet, "/user/z@x.io", "", httprouter.Params{{Key: "email", Value: "z@x.io"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestGetUserByID(t *testing.T) {
	id := primitive.NewObjectID()
	h := newTestHandler(&memRepo{users: []models.User{{ID: id, Email: "a@x.io"}}})

	rec := do(h.GetUser, http.MethodGet, "/users/"+id.Hex(), "", httprouter.Params{{Key: "id", Value: id.Hex()}})
	assert.Equal(t, http.StatusOK, rec.Code)

	missing := primitive.NewObjectID().Hex()
	rec = do(h.GetUser, http.MethodGet, "/users/"+missing, "", httprouter.Params{{Key: "id", Value: missing}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h.GetUser, http.MethodGet, "/users/zzz", "", httprouter.Params{{Key: "id", Value: "zzz"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &memRepo{users: []models.User{{ID: id, Email: "a@x.io"}}}
	h := newTestHandler(repo)
	ps := httprouter.Params{{Key: "id", Value: id.Hex()}}

	rec := do(h.UpdateUser, http.MethodPut, "/update-user/x", `{"name":"A","email":"a@x.io","option":"instructor"}`, ps)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleInstructor, repo.users[0].Role)

	rec = do(h.UpdateUser, http.MethodPut, "/update-user/x", `{"option":"superuser"}`, ps)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := httprouter.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}
	rec = do(h.UpdateUser, http.MethodPut, "/update-user/x", `{"option":"admin"}`, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, repo.users, 1)
}

func TestDeleteAndInstructors(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &memRepo{users: []models.User{
		{ID: id, Email: "t@x.io", Role: models.RoleInstructor},
		{ID: primitive.NewObjectID(), Email: "s@x.io"},
	}}
	h := newTestHandler(repo)

	rec := do(h.ListInstructors, http.MethodGet, "/instructors", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "t@x.io")
	assert.NotContains(t, rec.Body.String(), "s@x.io")

	rec = do(h.DeleteUser, http.MethodDelete, "/delete-user/x", "", httprouter.Params{{Key: "id", Value: id.Hex()}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())
	assert.Len(t, repo.users, 1)
}
