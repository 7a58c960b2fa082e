package events

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumniconnect/internal/auth"
)

type fakeStore struct {
	events map[uuid.UUID]*Event
	rsvps  map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: map[uuid.UUID]*Event{},
		rsvps:  map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeStore) Create(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeStore) List(ctx context.Context, flt Filter) ([]Event, error) {
	var res []Event
	for _, e := range f.events {
		res = append(res, *e)
	}
	return res, nil
}

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) AddRSVP(ctx context.Context, eventID, accountID uuid.UUID) error {
	if _, ok := f.events[eventID]; !ok {
		return ErrEventNotFound
	}
	if f.rsvps[eventID] == nil {
		f.rsvps[eventID] = map[uuid.UUID]bool{}
	}
	if f.rsvps[eventID][accountID] {
		return ErrAlreadyRSVPed
	}
	f.rsvps[eventID][accountID] = true
	return nil
}

func (f *fakeStore) ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]RSVP, error) {
	var res []RSVP
	for accountID := range f.rsvps[eventID] {
		res = append(res, RSVP{EventID: eventID, AccountID: accountID})
	}
	return res, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func asRole(req *http.Request, role auth.Role) *http.Request {
	id := auth.Identity{ID: uuid.New(), FullName: "Test User", Role: role}
	return req.WithContext(auth.WithIdentity(req.Context(), id))
}

func createReq(t *testing.T, role auth.Role) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"title":     "Homecoming 2026",
		"location":  "Main Hall",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"tags":      []string{"reunion"},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
	return asRole(req, role)
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	h := &CollectionHandler{Store: newFakeStore(), Logger: discardLogger()}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, createReq(t, auth.RoleStudent))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, createReq(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateEventValidatesRequiredFields(t *testing.T) {
	h := &CollectionHandler{Store: newFakeStore(), Logger: discardLogger()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte(`{"title":""}`)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asRole(req, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEvents(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.Create(context.Background(), &Event{Title: "Career Fair", StartsAt: time.Now()}))

	h := &CollectionHandler{Store: store, Logger: discardLogger()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asRole(req, auth.RoleStudent))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestRSVPOnceThenConflict(t *testing.T) {
	store := newFakeStore()
	evt := &Event{Title: "Gala", StartsAt: time.Now()}
	require.NoError(t, store.Create(context.Background(), evt))

	h := &DetailHandler{Store: store, Logger: discardLogger()}
	accountID := uuid.New()
	path := "/api/v1/events/" + evt.ID.String() + "/rsvp"

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{ID: accountID, Role: auth.RoleAlumni}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, do().Code)
	assert.Equal(t, http.StatusConflict, do().Code)
}

func TestRSVPUnknownEvent(t *testing.T) {
	h := &DetailHandler{Store: newFakeStore(), Logger: discardLogger()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+uuid.New().String()+"/rsvp", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asRole(req, auth.RoleAlumni))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRSVPsAdminOnly(t *testing.T) {
	store := newFakeStore()
	evt := &Event{Title: "Gala", StartsAt: time.Now()}
	require.NoError(t, store.Create(context.Background(), evt))
	require.NoError(t, store.AddRSVP(context.Background(), evt.ID, uuid.New()))

	h := &DetailHandler{Store: store, Logger: discardLogger()}
	path := "/api/v1/events/" + evt.ID.String() + "/rsvps"

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asRole(req, auth.RoleAlumni))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, path, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asRole(req, auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []RSVP
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}
