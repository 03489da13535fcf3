package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	days  []time.Time
	limit int
}

func (m *mockRepository) Capture(ctx context.Context, projectID int64, day time.Time) (Snapshot, error) {
	if projectID == 404 {
		return Snapshot{}, ErrProjectNotFound
	}
	m.days = append(m.days, day)
	return Snapshot{ProjectID: projectID, Date: day}, nil
}

func (m *mockRepository) FindByProjectID(ctx context.Context, projectID int64, limit int) ([]Snapshot, error) {
	m.limit = limit
	return nil, nil
}

func TestCaptureUsesProjectLocalDate(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)
	now := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

	_, err := svc.Capture(context.Background(), 1, "Asia/Seoul", now)
	require.NoError(t, err)
	_, err = svc.Capture(context.Background(), 1, "America/Los_Angeles", now)
	require.NoError(t, err)
	_, err = svc.Capture(context.Background(), 1, "bogus/zone", now)
	require.NoError(t, err)

	require.Len(t, repo.days, 3)
	assert.Equal(t, 10, repo.days[0].Day())
	assert.Equal(t, 9, repo.days[1].Day())
	assert.Equal(t, 9, repo.days[2].Day())

	_, err = svc.Capture(context.Background(), 404, "UTC", now)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestHistoryBoundsDays(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)
	_, err := svc.History(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryDays, repo.limit)
	_, err = svc.History(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, repo.limit)

	_, err = svc.History(context.Background(), 1, MaxHistoryDays)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryDays, repo.limit)

	for _, days := range []int{-1, MaxHistoryDays + 1, 1000} {
		_, err = svc.History(context.Background(), 1, days)
		require.ErrorIs(t, err, ErrInvalidDays, days)
	}
	assert.Equal(t, MaxHistoryDays, repo.limit)
}
