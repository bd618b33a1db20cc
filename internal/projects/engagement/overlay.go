package engagement

import (
	"sync"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

// Overlay holds optimistic likes and bookmarks in process memory. It is a view
// layer only: nothing here is ever written to the local or remote store, and
// the state is lost on restart.
type Overlay struct {
	mu        sync.RWMutex
	likes     map[string]map[string]struct{} // project id -> user ids
	bookmarks map[string]map[string]struct{}
}

func NewOverlay() *Overlay {
	return &Overlay{
		likes:     make(map[string]map[string]struct{}),
		bookmarks: make(map[string]map[string]struct{}),
	}
}

// View is a project as shown to one user, with the overlay applied.
type View struct {
	domain.ProjectRecord
	Bookmarks      int  `json:"bookmarks"`
	LikedByMe      bool `json:"likedByMe"`
	BookmarkedByMe bool `json:"bookmarkedByMe"`
}

// ToggleLike flips userID's like on a project and returns the new state with
// the overlay's like count for it.
func (o *Overlay) ToggleLike(projectID, userID string) (bool, int) {
	return o.toggle(o.likes, projectID, userID)
}

// ToggleBookmark flips userID's bookmark on a project.
func (o *Overlay) ToggleBookmark(projectID, userID string) (bool, int) {
	return o.toggle(o.bookmarks, projectID, userID)
}

// Decorate returns view copies of records. Persisted likes are increased by
// the overlay's likes; the records themselves are left untouched.
func (o *Overlay) Decorate(records []domain.ProjectRecord, userID string) []View {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]View, 0, len(records))
	for _, p := range records {
		out = append(out, o.view(p, userID))
	}
	return out
}

// DecorateOne is Decorate for a single record.
func (o *Overlay) DecorateOne(p domain.ProjectRecord, userID string) View {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.view(p, userID)
}

func (o *Overlay) view(p domain.ProjectRecord, userID string) View {
	likers := o.likes[p.ID]
	markers := o.bookmarks[p.ID]

	v := View{ProjectRecord: p, Bookmarks: len(markers)}
	v.Likes += len(likers)
	if userID != "" {
		_, v.LikedByMe = likers[userID]
		_, v.BookmarkedByMe = markers[userID]
	}
	return v
}

func (o *Overlay) toggle(set map[string]map[string]struct{}, projectID, userID string) (bool, int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	users, ok := set[projectID]
	if !ok {
		users = make(map[string]struct{})
		set[projectID] = users
	}

	if _, on := users[userID]; on {
		delete(users, userID)
		n := len(users)
		if n == 0 {
			delete(set, projectID)
		}
		return false, n
	}

	users[userID] = struct{}{}
	return true, len(users)
}
