package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/feedbackhub/feedbackhub/internal/jobs"
	"github.com/feedbackhub/feedbackhub/internal/statistics"
)

type fakeCapturer struct {
	err      error
	projects []int64
	zones    []string
}

func (f *fakeCapturer) Capture(ctx context.Context, projectID int64, timezone string, now time.Time) (statistics.Snapshot, error) {
	if f.err != nil {
		return statistics.Snapshot{}, f.err
	}
	f.projects = append(f.projects, projectID)
	f.zones = append(f.zones, timezone)
	return statistics.Snapshot{ProjectID: projectID, RoleCount: 3}, nil
}

func newRegistry(t *testing.T) *statistics.Registry {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return statistics.NewRegistry(client)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatisticsSnapshotJobCaptures(t *testing.T) {
	capturer := &fakeCapturer{}
	job := NewStatisticsSnapshotJob(capturer, newRegistry(t), quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewStatisticsSnapshotTask(5, "Asia/Seoul")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []int64{5}, capturer.projects)
	assert.Equal(t, []string{"Asia/Seoul"}, capturer.zones)
}

func TestStatisticsSnapshotJobSkipsVanishedProject(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)
	require.NoError(t, registry.Register(ctx, 9, "UTC"))
	job := NewStatisticsSnapshotJob(&fakeCapturer{err: statistics.ErrProjectNotFound}, registry, quietLogger(), nil)

	task, err := NewStatisticsSnapshotTask(9, "UTC")
	require.NoError(t, err)
	err = job.Handle(ctx, task)
	require.ErrorIs(t, err, asynq.SkipRetry)

	schedules, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestStatisticsSnapshotJobRetriesStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	job := NewStatisticsSnapshotJob(&fakeCapturer{err: boom}, nil, quietLogger(), nil)
	task, err := NewStatisticsSnapshotTask(1, "UTC")
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestStatisticsSnapshotJobRejectsBadPayload(t *testing.T) {
	job := NewStatisticsSnapshotJob(&fakeCapturer{}, nil, quietLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskStatisticsSnapshot, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestStatisticsConfigProvider(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)
	require.NoError(t, registry.Register(ctx, 2, "Europe/Berlin"))
	require.NoError(t, registry.Register(ctx, 1, "UTC"))

	provider := &StatisticsConfigProvider{Registry: registry, Logger: quietLogger()}
	configs, err := provider.GetConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "CRON_TZ=UTC 0 0 * * *", configs[0].Cronspec)
	assert.Equal(t, "CRON_TZ=Europe/Berlin 0 0 * * *", configs[1].Cronspec)
	assert.Equal(t, TaskStatisticsSnapshot, configs[1].Task.Type())

	var payload StatisticsSnapshotPayload
	require.NoError(t, json.Unmarshal(configs[1].Task.Payload(), &payload))
	assert.Equal(t, StatisticsSnapshotPayload{ProjectID: 2, Timezone: "Europe/Berlin"}, payload)
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, quietLogger()).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0}`, rec.Body.String())
}
