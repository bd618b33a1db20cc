package cronjob

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/auth"
)

// Sweeper is implemented by presence.Tracker.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// PresenceSweep drops stale presence entries every minute.
func PresenceSweep(tracker Sweeper, log *logrus.Logger) Job {
	return Job{
		Name: "presence_sweep",
		Spec: "0 * * * * *",
		Run: func(ctx context.Context) error {
			n, err := tracker.Sweep(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.WithField("removed", n).Debug("presence swept")
			}
			return nil
		},
	}
}

// SessionExpiry signs out sessions idle for longer than maxIdle, every five
// minutes. Subscribers see a signed_out event for each.
func SessionExpiry(sessions *auth.Sessions, maxIdle time.Duration, log *logrus.Logger) Job {
	return Job{
		Name: "session_expiry",
		Spec: "0 */5 * * * *",
		Run: func(ctx context.Context) error {
			if ids := sessions.Expire(maxIdle); len(ids) > 0 {
				log.WithField("expired", len(ids)).Info("idle sessions signed out")
			}
			return nil
		},
	}
}
