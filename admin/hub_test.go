package admin

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10)}
	require.True(t, hub.Register(client))

	data := []byte(`{"type":"class.created"}`)
	require.NoError(t, hub.Publish(context.Background(), "c1", data))

	select {
	case got := <-client.Send:
		assert.Equal(t, data, got)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.Unregister(client)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte, 1)}
	slow.Send <- []byte("backlog")
	fast := &Client{Send: make(chan []byte, 1)}
	require.True(t, hub.Register(slow))
	require.True(t, hub.Register(fast))

	require.NoError(t, hub.Publish(context.Background(), "", []byte("x")))
	select {
	case got := <-fast.Send:
		assert.Equal(t, "x", string(got))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	assert.Equal(t, "backlog", string(<-slow.Send))
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Send: make(chan []byte, 1)}
	require.True(t, hub.Register(client))

	require.NoError(t, hub.Close())
	hub.Stop()

	_, open := <-client.Send
	assert.False(t, open)

	<-hub.done
	assert.ErrorIs(t, hub.Publish(context.Background(), "", []byte("x")), ErrHubClosed)
	assert.False(t, hub.Register(&Client{Send: make(chan []byte, 1)}))
}

type fakeStats struct {
	stats models.AdminStats
	err   error
}

func (f fakeStats) Stats(context.Context) (models.AdminStats, error) { return f.stats, f.err }

func TestStatsHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(fakeStats{stats: models.AdminStats{ApprovedClasses: 2, PendingClasses: 1, TotalClasses: 4}}, nil, log, time.Second)
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin-stats", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"approvedClasses":2,"pendingClasses":1,"instructors":0,"totalClasses":4,"totalEnrolled":0}`, rec.Body.String())

	h = NewHandler(fakeStats{err: errors.New("down")}, nil, log, time.Second)
	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin-stats", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
