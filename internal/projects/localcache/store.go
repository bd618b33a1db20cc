package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

const (
	projectsKeySuffix = ":projects" // whole collection lives under {namespace}:projects
	maxTxRetries      = 8
)

// Store keeps every project record as one JSON array under a single
// namespaced Redis key. It is the source of truth when the remote store is
// unreachable.
type Store struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewStore creates a new Store
func NewStore(client *redis.Client, namespace string) *Store {
	if namespace == "" {
		namespace = "collabhub"
	}
	return &Store{
		client: client,
		key:    namespace + projectsKeySuffix,
		now:    time.Now,
	}
}

// Key returns the Redis key holding the collection.
func (s *Store) Key() string {
	return s.key
}

// SaveProject writes rec into the collection and returns the stored copy.
// See PutProject.
func (s *Store) SaveProject(ctx context.Context, rec domain.ProjectRecord) (*domain.ProjectRecord, error) {
	saved, _, err := s.PutProject(ctx, rec)
	return saved, err
}

// PutProject writes rec into the collection and reports whether an existing
// record was replaced. A record of the same creator with the same id, or else
// the same title, is replaced in place and keeps its id and createdAt. An id
// owned by another creator fails with domain.ErrNotOwner. The write is
// acknowledged by Redis before this returns.
func (s *Store) PutProject(ctx context.Context, rec domain.ProjectRecord) (*domain.ProjectRecord, bool, error) {
	var (
		saved    domain.ProjectRecord
		replaced bool
	)

	txf := func(tx *redis.Tx) error {
		records, err := s.load(ctx, tx)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		next := rec
		next.Normalize()

		if owner, ok := creatorOf(records, next.ID); ok && owner != next.CreatorID {
			return fmt.Errorf("%w: %s", domain.ErrNotOwner, next.ID)
		}

		replaced = false
		if idx := indexOf(records, next); idx >= 0 {
			replaced = true
			prev := records[idx]
			next.ID = prev.ID
			next.CreatedAt = prev.CreatedAt
			carryCounters(&next, prev)
			next.UpdatedAt = now
			records[idx] = next
		} else {
			if next.ID == "" {
				next.ID = domain.NewID()
			}
			if next.CreatedAt.IsZero() {
				next.CreatedAt = now
			}
			next.UpdatedAt = now
			records = append(records, next)
		}

		payload, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshal projects: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		saved = next
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return &saved, replaced, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// another writer touched the key between read and write
			continue
		}
		if errors.Is(err, domain.ErrNotOwner) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: save project: %v", domain.ErrStorageUnavailable, err)
	}

	return nil, false, fmt.Errorf("%w: save project: too much contention on %s", domain.ErrStorageUnavailable, s.key)
}

// GetAllProjects returns every stored record in stored order.
func (s *Store) GetAllProjects(ctx context.Context) ([]domain.ProjectRecord, error) {
	records, err := s.load(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", domain.ErrStorageUnavailable, err)
	}
	return records, nil
}

// GetProjectByID is a point lookup over the collection.
func (s *Store) GetProjectByID(ctx context.Context, id string) (*domain.ProjectRecord, error) {
	records, err := s.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Ping reports whether the backing Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) load(ctx context.Context, g getter) ([]domain.ProjectRecord, error) {
	data, err := g.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.ProjectRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}

	var records []domain.ProjectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if records == nil {
		records = []domain.ProjectRecord{}
	}
	return records, nil
}

// indexOf finds the record rec replaces. Matches never cross creators.
func indexOf(records []domain.ProjectRecord, rec domain.ProjectRecord) int {
	if rec.ID != "" {
		for i := range records {
			if records[i].ID == rec.ID && records[i].CreatorID == rec.CreatorID {
				return i
			}
		}
	}
	key := domain.TitleKey(rec.Title)
	for i := range records {
		if records[i].CreatorID == rec.CreatorID && domain.TitleKey(records[i].Title) == key {
			return i
		}
	}
	return -1
}

func creatorOf(records []domain.ProjectRecord, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for i := range records {
		if records[i].ID == id {
			return records[i].CreatorID, true
		}
	}
	return "", false
}

// carryCounters keeps counters the save path never sets.
func carryCounters(next *domain.ProjectRecord, prev domain.ProjectRecord) {
	if next.Views == 0 {
		next.Views = prev.Views
	}
	if next.Likes == 0 {
		next.Likes = prev.Likes
	}
	if next.Comments == 0 {
		next.Comments = prev.Comments
	}
}
