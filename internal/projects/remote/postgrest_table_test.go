package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/supabase-go"

	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

// fakePostgrest serves /rest/v1/projects with just enough of PostgREST's
// behaviour for the table: eq filters, limit, created_at ordering, a
// (title, creator_id) unique constraint and return=representation.
type fakePostgrest struct {
	mu       sync.Mutex
	rows     []Row
	requests []*http.Request
	failAll  bool
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	w.Header().Set("Content-Type", "application/json")
	if f.failAll {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"code":"PGRST000","message":"database unavailable"}`)
		return
	}
	if r.URL.Path != "/rest/v1/projects" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"PGRST205","message":"unknown table"}`)
		return
	}

	switch r.Method {
	case http.MethodGet:
		matched := f.filter(r)
		if strings.HasPrefix(r.URL.Query().Get("order"), "created_at.desc") {
			sort.SliceStable(matched, func(i, j int) bool {
				return matched[i].CreatedAt.After(*matched[j].CreatedAt)
			})
		}
		if r.URL.Query().Get("limit") == "1" && len(matched) > 1 {
			matched = matched[:1]
		}
		_ = json.NewEncoder(w).Encode(matched)

	case http.MethodPost:
		var row Row
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"code":"PGRST102","message":"invalid body"}`)
			return
		}
		for _, existing := range f.rows {
			if (existing.Title == row.Title && existing.CreatorID == row.CreatorID) || (row.ID != "" && existing.ID == row.ID) {
				w.WriteHeader(http.StatusConflict)
				_, _ = io.WriteString(w, `{"code":"23505","message":"duplicate key value violates unique constraint \"projects_title_creator_key\""}`)
				return
			}
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt == nil {
			now := time.Now().UTC()
			row.CreatedAt = &now
		}
		f.rows = append(f.rows, row)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]Row{row})

	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var patched []Row
		for i := range f.rows {
			if !f.matches(f.rows[i], r) {
				continue
			}
			// unmarshalling onto the stored row only touches sent columns
			_ = json.Unmarshal(body, &f.rows[i])
			patched = append(patched, f.rows[i])
		}
		if patched == nil {
			patched = []Row{}
		}
		_ = json.NewEncoder(w).Encode(patched)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakePostgrest) filter(r *http.Request) []Row {
	out := []Row{}
	for _, row := range f.rows {
		if f.matches(row, r) {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakePostgrest) matches(row Row, r *http.Request) bool {
	q := r.URL.Query()
	checks := map[string]string{"id": row.ID, "title": row.Title, "creator_id": row.CreatorID}
	for col, val := range checks {
		if want := q.Get(col); want != "" && strings.TrimPrefix(want, "eq.") != val {
			return false
		}
	}
	return true
}

func setupPostgrestTable(t *testing.T) (*PostgrestTable, *fakePostgrest) {
	fake := &fakePostgrest{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := supabase.NewClient(srv.URL, "service-key", nil)
	require.NoError(t, err)

	return NewPostgrestTable(client, "projects"), fake
}

func TestPostgrestTable_RoundTrip(t *testing.T) {
	ctx := context.Background()
	table, fake := setupPostgrestTable(t)

	id, err := table.FindID(ctx, "Kiosk", "u1")
	require.NoError(t, err)
	assert.Empty(t, id)

	row := RowFromRecord(testRecord("Kiosk", "u1"))
	row.ApprovalStatus = string(domain.ApprovalPending)
	id, err = table.Insert(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, row.ID, id)

	found, err := table.FindID(ctx, "Kiosk", "u1")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	row.Description = "patched"
	require.NoError(t, table.Update(ctx, id, row))

	rows, err := table.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "patched", rows[0].Description)
	assert.Equal(t, "pending", rows[0].ApprovalStatus)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	last := fake.requests[len(fake.requests)-1]
	assert.Equal(t, "created_at.desc.nullslast", last.URL.Query().Get("order"))
	assert.Equal(t, "Bearer service-key", last.Header.Get("Authorization"))
}

func TestPostgrestTable_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate insert is a unique violation", func(t *testing.T) {
		table, _ := setupPostgrestTable(t)
		row := RowFromRecord(testRecord("Twice", "u1"))
		_, err := table.Insert(ctx, row)
		require.NoError(t, err)

		row.ID = ""
		_, err = table.Insert(ctx, row)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("update of a missing row fails", func(t *testing.T) {
		table, _ := setupPostgrestTable(t)
		err := table.Update(ctx, uuid.NewString(), RowFromRecord(testRecord("Ghost", "u1")))
		assert.Error(t, err)
	})

	t.Run("server errors surface", func(t *testing.T) {
		table, fake := setupPostgrestTable(t)
		fake.failAll = true

		_, err := table.List(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database unavailable")
		assert.Error(t, table.Ping(ctx))
	})

	t.Run("cancelled context short-circuits", func(t *testing.T) {
		table, fake := setupPostgrestTable(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := table.List(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, fake.requests)
	})
}

// Saving the same (title, creator) twice leaves one remote row carrying the
// second description and the first created_at.
func TestAdapter_IdempotentUpdateOverPostgrest(t *testing.T) {
	ctx := context.Background()
	table, fake := setupPostgrestTable(t)
	a := NewAdapter(table, nil, logging.Discard())

	first := testRecord("Solar Kiosk", "u1")
	id1, err := a.UpsertProject(ctx, first)
	require.NoError(t, err)

	second := first
	second.ID = domain.NewID()
	second.Description = "second"
	second.CreatedAt = first.CreatedAt.Add(48 * time.Hour)
	second.UpdatedAt = first.UpdatedAt.Add(48 * time.Hour)
	id2, err := a.UpsertProject(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.rows, 1)
	assert.Equal(t, "second", fake.rows[0].Description)
	require.NotNil(t, fake.rows[0].CreatedAt)
	assert.True(t, first.CreatedAt.Equal(*fake.rows[0].CreatedAt))
	assert.True(t, second.UpdatedAt.Equal(*fake.rows[0].UpdatedAt))
}

func TestAdapter_ForeignIDOverPostgrest(t *testing.T) {
	ctx := context.Background()
	table, fake := setupPostgrestTable(t)
	a := NewAdapter(table, nil, logging.Discard())

	victim := testRecord("Alice Project", "alice")
	_, err := a.UpsertProject(ctx, victim)
	require.NoError(t, err)

	creator, err := table.CreatorOf(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", creator)

	attack := testRecord("Pwned", "mallory")
	attack.ID = victim.ID
	_, err = a.UpsertProject(ctx, attack)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.rows, 1)
	assert.Equal(t, "alice", fake.rows[0].CreatorID)
	assert.Equal(t, "Alice Project", fake.rows[0].Title)
}
