package donations

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
	donations []Donation
}

func (f *fakeStore) Create(ctx context.Context, d *Donation) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()
	f.donations = append(f.donations, *d)
	return nil
}

func (f *fakeStore) ListAll(ctx context.Context, limit int) ([]Donation, error) {
	return append([]Donation(nil), f.donations...), nil
}

func (f *fakeStore) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Donation, error) {
	var res []Donation
	for _, d := range f.donations {
		if d.AccountID == accountID {
			res = append(res, d)
		}
	}
	return res, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func donate(h *Handler, id auth.Identity, amountCents int64) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]interface{}{"amount_cents": amountCents, "note": "go team"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/donations", bytes.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDonateRoles(t *testing.T) {
	h := &Handler{Store: &fakeStore{}, Logger: discardLogger()}

	student := auth.Identity{ID: uuid.New(), Role: auth.RoleStudent}
	assert.Equal(t, http.StatusForbidden, donate(h, student, 5000).Code)

	alum := auth.Identity{ID: uuid.New(), Role: auth.RoleAlumni}
	rec := donate(h, alum, 5000)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var d Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, StatusCompleted, d.Status)
	assert.Equal(t, alum.ID, d.AccountID)
}

func TestDonateRejectsNonPositiveAmount(t *testing.T) {
	h := &Handler{Store: &fakeStore{}, Logger: discardLogger()}
	alum := auth.Identity{ID: uuid.New(), Role: auth.RoleAlumni}
	assert.Equal(t, http.StatusBadRequest, donate(h, alum, 0).Code)
	assert.Equal(t, http.StatusBadRequest, donate(h, alum, -100).Code)
}

func TestListDonationsScoping(t *testing.T) {
	store := &fakeStore{}
	h := &Handler{Store: store, Logger: discardLogger()}

	alice := auth.Identity{ID: uuid.New(), Role: auth.RoleAlumni}
	bob := auth.Identity{ID: uuid.New(), Role: auth.RoleAlumni}
	require.Equal(t, http.StatusCreated, donate(h, alice, 1000).Code)
	require.Equal(t, http.StatusCreated, donate(h, bob, 2000).Code)

	list := func(id auth.Identity) []Donation {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/donations", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), id))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var ds []Donation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
		return ds
	}

	// Alumni see only their own donations.
	assert.Len(t, list(alice), 1)

	// Admins see everything.
	admin := auth.Identity{ID: uuid.New(), Role: auth.RoleAdmin}
	assert.Len(t, list(admin), 2)
}
