package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/auth"
	authdomain "github.com/collabhub/collabhub-backend/internal/auth/domain"
	"github.com/collabhub/collabhub-backend/internal/logging"
)

const (
	presenceKeySuffix = ":presence" // sorted set user_id -> last seen (unix ms)
	DefaultWindow     = 2 * time.Minute
	eventTimeout      = 2 * time.Second
)

// Tracker records who is online. A user is online while their last sighting
// is within the window.
type Tracker struct {
	client *redis.Client
	key    string
	window time.Duration
	log    *logrus.Logger
	now    func() time.Time
}

func NewTracker(client *redis.Client, namespace string, window time.Duration, log *logrus.Logger) *Tracker {
	if namespace == "" {
		namespace = "collabhub"
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Tracker{
		client: client,
		key:    namespace + presenceKeySuffix,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Window is how long a sighting keeps a user online.
func (t *Tracker) Window() time.Duration { return t.window }

// Touch marks userID as seen now.
func (t *Tracker) Touch(ctx context.Context, userID string) error {
	ms := float64(t.now().UnixMilli())
	if err := t.client.ZAdd(ctx, t.key, redis.Z{Score: ms, Member: userID}).Err(); err != nil {
		return fmt.Errorf("failed to touch presence: %w", err)
	}
	return nil
}

// Remove marks userID offline immediately.
func (t *Tracker) Remove(ctx context.Context, userID string) error {
	if err := t.client.ZRem(ctx, t.key, userID).Err(); err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}
	return nil
}

// Online returns the ids of users seen within the window, most recent first.
func (t *Tracker) Online(ctx context.Context) ([]string, error) {
	ids, err := t.client.ZRevRangeByScore(ctx, t.key, &redis.ZRangeBy{
		Min: t.cutoff(),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list online users: %w", err)
	}
	return ids, nil
}

// IsOnline reports whether userID was seen within the window.
func (t *Tracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	ms, err := t.client.ZScore(ctx, t.key, userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get presence: %w", err)
	}
	return int64(ms) >= t.now().Add(-t.window).UnixMilli(), nil
}

// Sweep drops every entry older than the window and returns how many went.
func (t *Tracker) Sweep(ctx context.Context) (int64, error) {
	n, err := t.client.ZRemRangeByScore(ctx, t.key, "-inf", "("+t.cutoff()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to sweep presence: %w", err)
	}
	return n, nil
}

// Follow keeps the tracker in step with session events until the returned
// function is called.
func (t *Tracker) Follow(sessions *auth.Sessions) (stop func()) {
	return sessions.Subscribe(func(evt authdomain.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		var err error
		switch evt.Type {
		case authdomain.EventSignedIn, authdomain.EventActive:
			err = t.Touch(ctx, evt.Identity.UserID)
		case authdomain.EventSignedOut:
			err = t.Remove(ctx, evt.Identity.UserID)
		}
		if err != nil {
			logging.FromContext(ctx, t.log).
				With("user_id", evt.Identity.UserID).
				LogWarnf("presence_event", "%s: %v", evt.Type, err)
		}
	})
}

func (t *Tracker) cutoff() string {
	return strconv.FormatInt(t.now().Add(-t.window).UnixMilli(), 10)
}
