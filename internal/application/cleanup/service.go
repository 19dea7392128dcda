package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/voyagevault/auth-api/internal/domain"
)

// UserStore is the account persistence the sweep needs.
type UserStore interface {
	ListStaleUnverified(ctx context.Context, cutoff time.Time) ([]domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// CodeStore deletes the code rows belonging to swept accounts.
type CodeStore interface {
	Delete(ctx context.Context, email string) error
}

// Service removes accounts that never completed email verification within
// the configured window, together with their verification codes.
type Service struct {
	users  UserStore
	codes  CodeStore
	maxAge time.Duration
}

func NewService(users UserStore, codes CodeStore, maxAge time.Duration) *Service {
	return &Service{users: users, codes: codes, maxAge: maxAge}
}

// Run performs one sweep. Best-effort: a failed deletion is logged and the
// sweep continues with the remaining accounts; the first error is returned
// so the scheduler can log the run as degraded.
func (s *Service) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	stale, err := s.users.ListStaleUnverified(ctx, cutoff)
	if err != nil {
		return err
	}

	var firstErr error
	removed := 0
	for _, u := range stale {
		if err := s.codes.Delete(ctx, u.Email); err != nil {
			slog.Warn("cleanup: failed to delete verification code", "email", u.Email, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := s.users.Delete(ctx, u.UserID); err != nil {
			slog.Warn("cleanup: failed to delete user", "user_id", u.UserID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	slog.Info("cleanup sweep finished", "cutoff", cutoff, "candidates", len(stale), "removed", removed)
	return firstErr
}
