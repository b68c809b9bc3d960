package service

import (
	"context"

	"github.com/supportportal/portal/internal/portal/domain"
	"github.com/supportportal/portal/internal/portal/store"
	"github.com/supportportal/portal/pkg/lockout"
	"github.com/supportportal/portal/pkg/slogx"
)

// LoginAttemptGuard decides whether an authentication attempt may proceed
// and feeds the attempt tracker from login outcomes. The store's locked
// column is the durable source of truth; the in-memory counter is advisory
// and is written back when the threshold trips.
type LoginAttemptGuard struct {
	Tracker *lockout.Tracker
	Store   store.Store
}

// Check gates an attempt for a known user. A durably locked account clears
// its counter so the record does not linger, then still fails locked. An
// account over the attempt limit is locked in the store before failing.
func (g *LoginAttemptGuard) Check(ctx context.Context, user domain.User) error {
	if user.Locked {
		g.Tracker.Evict(user.Username)
		return ErrAccountLocked
	}

	if g.Tracker.Exceeded(user.Username) {
		g.persistLock(ctx, user)
		return ErrAccountLocked
	}
	return nil
}

// RecordFailure counts one failed attempt. If the failure trips the
// threshold the lock is persisted immediately so it survives restarts.
// Tracker or store trouble never changes the authentication outcome.
func (g *LoginAttemptGuard) RecordFailure(ctx context.Context, user domain.User) {
	count := g.Tracker.Increment(user.Username)
	if g.Tracker.Exceeded(user.Username) {
		slogx.FromContext(ctx).Warn("account reached failed login limit",
			"username", user.Username,
			"attempts", count,
		)
		g.persistLock(ctx, user)
	}
}

// RecordUnknown counts a failed attempt against a username that matched no
// account. The counter still fills so probing a name before registering it
// gains nothing, but there is no lock to persist.
func (g *LoginAttemptGuard) RecordUnknown(ctx context.Context, username string) {
	g.Tracker.Increment(username)
}

// RecordSuccess clears the account's failure record after a successful login.
func (g *LoginAttemptGuard) RecordSuccess(ctx context.Context, user domain.User) {
	g.Tracker.Evict(user.Username)
}

func (g *LoginAttemptGuard) persistLock(ctx context.Context, user domain.User) {
	if user.Locked {
		return
	}
	if err := g.Store.Users().SetLocked(ctx, user.ID, true); err != nil {
		slogx.FromContext(ctx).Error("failed to persist account lock",
			"username", user.Username,
			"error", err,
		)
	}
}
