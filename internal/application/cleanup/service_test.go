package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyagevault/auth-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) ListStaleUnverified(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	args := m.Called(ctx, cutoff)
	if us, _ := args.Get(0).([]domain.User); us != nil {
		return us, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// --- Run ---

func TestRun_DeletesStaleAccountsAndCodes(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}

	stale := []domain.User{
		{UserID: "u1", Email: "a@b.com"},
		{UserID: "u2", Email: "c@d.com"},
	}
	us.On("ListStaleUnverified", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// 24h window, allow scheduling slack
		return time.Since(cutoff) > 23*time.Hour && time.Since(cutoff) < 25*time.Hour
	})).Return(stale, nil)
	cs.On("Delete", mock.Anything, "a@b.com").Return(nil)
	cs.On("Delete", mock.Anything, "c@d.com").Return(nil)
	us.On("Delete", mock.Anything, "u1").Return(nil)
	us.On("Delete", mock.Anything, "u2").Return(nil)

	svc := NewService(us, cs, 24*time.Hour)
	require.NoError(t, svc.Run(context.Background()))
	us.AssertExpectations(t)
	cs.AssertExpectations(t)
}

func TestRun_NothingStale_NoDeletes(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	us.On("ListStaleUnverified", mock.Anything, mock.Anything).Return([]domain.User{}, nil)

	svc := NewService(us, cs, 24*time.Hour)
	require.NoError(t, svc.Run(context.Background()))
	us.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	cs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRun_ListFailure_ReturnsError(t *testing.T) {
	us := &mockUserStore{}
	us.On("ListStaleUnverified", mock.Anything, mock.Anything).Return(nil, errors.New("scan throttled"))

	svc := NewService(us, &mockCodeStore{}, 24*time.Hour)
	require.Error(t, svc.Run(context.Background()))
}

func TestRun_PartialFailure_ContinuesAndReportsFirstError(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}

	stale := []domain.User{
		{UserID: "u1", Email: "a@b.com"},
		{UserID: "u2", Email: "c@d.com"},
	}
	boom := errors.New("conditional check failed")
	us.On("ListStaleUnverified", mock.Anything, mock.Anything).Return(stale, nil)
	cs.On("Delete", mock.Anything, "a@b.com").Return(nil)
	us.On("Delete", mock.Anything, "u1").Return(boom)
	cs.On("Delete", mock.Anything, "c@d.com").Return(nil)
	us.On("Delete", mock.Anything, "u2").Return(nil)

	svc := NewService(us, cs, 24*time.Hour)
	err := svc.Run(context.Background())

	assert.Equal(t, boom, err)
	us.AssertExpectations(t) // u2 was still swept after u1 failed
}
