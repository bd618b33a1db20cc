package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

// SyncError is the soft failure of a remote upsert. It matches
// domain.ErrRemoteSyncFailed as well as the underlying cause.
type SyncError struct {
	Title string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%v for %q: %v", domain.ErrRemoteSyncFailed, e.Title, e.Err)
}

func (e *SyncError) Unwrap() []error {
	return []error{domain.ErrRemoteSyncFailed, e.Err}
}

// LocalSource is the fallback read path used when the remote store fails.
type LocalSource interface {
	GetAllProjects(ctx context.Context) ([]domain.ProjectRecord, error)
}

// Adapter translates canonical records to the remote schema and back. Remote
// errors never escape as hard failures: writes return *SyncError, reads fall
// back to the local cache.
type Adapter struct {
	table Table
	local LocalSource
	log   *logrus.Logger
	now   func() time.Time
}

// NewAdapter creates an adapter. A nil table disables remote sync.
func NewAdapter(table Table, local LocalSource, log *logrus.Logger) *Adapter {
	if log == nil {
		log = logging.Discard()
	}
	return &Adapter{
		table: table,
		local: local,
		log:   log,
		now:   time.Now,
	}
}

// Enabled reports whether a remote backend is configured.
func (a *Adapter) Enabled() bool {
	return a.table != nil
}

// Backend names the configured backend.
func (a *Adapter) Backend() string {
	if a.table == nil {
		return "disabled"
	}
	return a.table.Name()
}

// UpsertProject updates the row matching (title, creator) or inserts a new
// one with approval_status pending, returning the remote id. Records without
// an attributable creator are not sent at all.
func (a *Adapter) UpsertProject(ctx context.Context, rec domain.ProjectRecord) (string, error) {
	logger := logging.FromContext(ctx, a.log).With("backend", a.Backend())

	if a.table == nil {
		return "", domain.ErrRemoteDisabled
	}
	if !rec.HasCreator() {
		logger.LogInfof("upsert_project", "remote sync not attempted for %q: missing or anonymous creator", rec.Title)
		return "", domain.ErrInvalidCreator
	}

	row := RowFromRecord(rec)
	if row.UpdatedAt == nil {
		t := a.now().UTC()
		row.UpdatedAt = &t
	}

	id, err := a.upsert(ctx, row)
	if err != nil {
		logger.LogError("upsert_project", err)
		return "", &SyncError{Title: rec.Title, Err: err}
	}

	logger.LogInfof("upsert_project", "synced %q as %s", rec.Title, id)
	return id, nil
}

func (a *Adapter) upsert(ctx context.Context, row Row) (string, error) {
	id, err := a.table.FindID(ctx, row.Title, row.CreatorID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, a.table.Update(ctx, id, row)
	}

	row.ApprovalStatus = string(domain.ApprovalPending)
	if row.CreatedAt == nil {
		row.CreatedAt = row.UpdatedAt
	}

	id, err = a.table.Insert(ctx, row)
	if err == nil {
		return id, nil
	}
	if !IsUniqueViolation(err) {
		return "", err
	}

	// lost an insert race, or the shared id already exists under another title
	id, ferr := a.table.FindID(ctx, row.Title, row.CreatorID)
	if ferr != nil {
		return "", ferr
	}
	if id != "" {
		return id, a.table.Update(ctx, id, row)
	}
	if row.ID == "" {
		return "", err
	}

	// a renamed project keeps its id; the row must still be the caller's
	owner, oerr := a.table.CreatorOf(ctx, row.ID)
	if oerr != nil {
		return "", oerr
	}
	if owner != row.CreatorID {
		return "", fmt.Errorf("%w: %s", domain.ErrNotOwner, row.ID)
	}
	return row.ID, a.table.Update(ctx, row.ID, row)
}

// FetchAllProjects returns every remote project, newest first, in canonical
// shape. When the remote read fails the local cache contents are returned
// instead; only a failing fallback produces an error.
func (a *Adapter) FetchAllProjects(ctx context.Context) ([]domain.ProjectRecord, error) {
	logger := logging.FromContext(ctx, a.log).With("backend", a.Backend())

	if a.table == nil {
		return a.fallback(ctx, domain.ErrRemoteDisabled)
	}

	rows, err := a.table.List(ctx)
	if err != nil {
		logger.LogWarnf("fetch_all_projects", "%v: %v; serving local cache", domain.ErrRemoteFetchFailed, err)
		return a.fallback(ctx, err)
	}

	out := make([]domain.ProjectRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out, nil
}

// Ping probes the remote backend.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.table == nil {
		return domain.ErrRemoteDisabled
	}
	return a.table.Ping(ctx)
}

func (a *Adapter) fallback(ctx context.Context, cause error) ([]domain.ProjectRecord, error) {
	if a.local == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteFetchFailed, cause)
	}
	records, err := a.local.GetAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (local fallback: %v)", domain.ErrRemoteFetchFailed, cause, err)
	}
	return records, nil
}
