package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/domain"
	"github.com/collabhub/collabhub-backend/internal/projects/remote"
)

const (
	WarningSyncFailedPrefix = "Database sync failed: "
	WarningNotAttempted     = "Project saved locally; remote sync not attempted for anonymous creator"
	WarningRemoteDisabled   = "Project saved locally; remote sync is disabled"
)

// LocalStore is the node-local cache every save goes through first.
type LocalStore interface {
	PutProject(ctx context.Context, rec domain.ProjectRecord) (*domain.ProjectRecord, bool, error)
	GetAllProjects(ctx context.Context) ([]domain.ProjectRecord, error)
	GetProjectByID(ctx context.Context, id string) (*domain.ProjectRecord, error)
}

// RemoteStore is the shared store replicated to on a best-effort basis.
type RemoteStore interface {
	UpsertProject(ctx context.Context, rec domain.ProjectRecord) (string, error)
	FetchAllProjects(ctx context.Context) ([]domain.ProjectRecord, error)
}

// ProjectService coordinates the dual write and the merged read of projects.
type ProjectService struct {
	local    LocalStore
	remote   RemoteStore
	validate *validator.Validate
	log      *logrus.Logger
}

// NewProjectService creates a new project service
func NewProjectService(local LocalStore, remote RemoteStore, log *logrus.Logger) *ProjectService {
	if log == nil {
		log = logging.Discard()
	}
	return &ProjectService{
		local:    local,
		remote:   remote,
		validate: validator.New(),
		log:      log,
	}
}

// Save persists the project locally, then replicates it to the remote store.
// Success only reflects the local write; remote trouble becomes a warning.
// The returned error is non-nil for invalid input or a failed local write.
func (s *ProjectService) Save(ctx context.Context, in domain.SaveInput) (*domain.SaveResult, error) {
	logger := logging.FromContext(ctx, s.log)

	if err := s.validateInput(in); err != nil {
		return &domain.SaveResult{Success: false, Error: err.Error()}, err
	}

	if in.ID != "" {
		if err := s.checkOwner(ctx, in.ID, in.CreatorID); err != nil {
			return &domain.SaveResult{Success: false, Error: err.Error()}, err
		}
	}

	saved, replaced, err := s.local.PutProject(ctx, in.Record())
	if errors.Is(err, domain.ErrNotOwner) {
		return &domain.SaveResult{Success: false, Error: err.Error()}, err
	}
	if err != nil {
		logger.LogError("save_project", err)
		return &domain.SaveResult{Success: false, Error: "Failed to save project locally"}, err
	}

	result := &domain.SaveResult{Success: true, Project: saved, Replaced: replaced}

	// strictly after the local write
	remoteID, err := s.remote.UpsertProject(ctx, *saved)
	switch {
	case err == nil:
		result.RemoteID = remoteID
	case errors.Is(err, domain.ErrInvalidCreator):
		result.Warning = WarningNotAttempted
	case errors.Is(err, domain.ErrRemoteDisabled):
		result.Warning = WarningRemoteDisabled
	default:
		cause := err
		var syncErr *remote.SyncError
		if errors.As(err, &syncErr) {
			cause = syncErr.Err
		}
		result.Warning = WarningSyncFailedPrefix + cause.Error()
		logger.LogWarnf("save_project", "project %s kept locally only: %v", saved.ID, err)
	}

	return result, nil
}

// LoadAll builds the merged view of both stores. It is rebuilt on every call.
func (s *ProjectService) LoadAll(ctx context.Context) ([]domain.ProjectRecord, error) {
	logger := logging.FromContext(ctx, s.log)

	remoteRecs, remoteErr := s.remote.FetchAllProjects(ctx)
	if remoteErr != nil {
		logger.LogWarnf("load_projects", "remote and fallback read failed: %v", remoteErr)
	}

	localRecs, localErr := s.local.GetAllProjects(ctx)
	if localErr != nil {
		if remoteErr != nil {
			return nil, fmt.Errorf("load projects: %w", localErr)
		}
		logger.LogError("load_projects", localErr)
	}

	return Merge(remoteRecs, localRecs), nil
}

// Get looks a project up in the merged view.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.ProjectRecord, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// checkOwner only lets a caller address an existing project it created.
func (s *ProjectService) checkOwner(ctx context.Context, id, creatorID string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatorID != strings.TrimSpace(creatorID) {
		return fmt.Errorf("%w: %s", domain.ErrNotOwner, id)
	}
	return nil
}

// Merge keeps every remote record in fetched order, then appends the local
// records no remote record already covers. A local record is covered when a
// remote record has the same id or, for records saved before ids were shared,
// a case-insensitively equal title.
func Merge(remoteRecs, localRecs []domain.ProjectRecord) []domain.ProjectRecord {
	out := make([]domain.ProjectRecord, 0, len(remoteRecs)+len(localRecs))
	ids := make(map[string]struct{}, len(remoteRecs))
	titles := make(map[string]struct{}, len(remoteRecs))

	for _, r := range remoteRecs {
		out = append(out, r)
		if r.ID != "" {
			ids[r.ID] = struct{}{}
		}
		titles[domain.TitleKey(r.Title)] = struct{}{}
	}

	for _, l := range localRecs {
		if _, ok := ids[l.ID]; ok && l.ID != "" {
			continue
		}
		if _, ok := titles[domain.TitleKey(l.Title)]; ok {
			continue
		}
		out = append(out, l)
	}

	return out
}

func (s *ProjectService) validateInput(in domain.SaveInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
			}
			msgs = append(msgs, msg)
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
	}

	return nil
}
