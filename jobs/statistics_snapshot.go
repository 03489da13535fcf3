package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/feedbackhub/feedbackhub/internal/jobs"
	"github.com/feedbackhub/feedbackhub/internal/statistics"
)

// StatisticsSnapshotPayload identifies the project to capture.
type StatisticsSnapshotPayload struct {
	ProjectID int64  `json:"project_id"`
	Timezone  string `json:"timezone"`
}

// SnapshotCapturer stores a daily snapshot.
type SnapshotCapturer interface {
	Capture(ctx context.Context, projectID int64, timezone string, now time.Time) (statistics.Snapshot, error)
}

// ScheduleRegistry exposes the recurring statistics registrations.
type ScheduleRegistry interface {
	List(ctx context.Context) ([]statistics.Schedule, error)
	Unregister(ctx context.Context, projectID int64) error
}

// NewStatisticsSnapshotTask builds a snapshot task for one project.
func NewStatisticsSnapshotTask(projectID int64, timezone string) (*asynq.Task, error) {
	body, err := json.Marshal(StatisticsSnapshotPayload{ProjectID: projectID, Timezone: timezone})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatisticsSnapshot, body, asynq.Queue(QueueDefault)), nil
}

// StatisticsSnapshotJob handles TaskStatisticsSnapshot.
type StatisticsSnapshotJob struct {
	Capturer SnapshotCapturer
	Registry ScheduleRegistry
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewStatisticsSnapshotJob constructs the job handler.
func NewStatisticsSnapshotJob(capturer SnapshotCapturer, registry ScheduleRegistry, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatisticsSnapshotJob {
	return &StatisticsSnapshotJob{
		Capturer: capturer,
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
		clock:    time.Now,
	}
}

// Handle captures the snapshot. A project deleted since registration is
// unregistered and the task is not retried.
func (j *StatisticsSnapshotJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Capturer == nil {
		return errors.New("statistics snapshot: dependencies not configured")
	}
	var payload StatisticsSnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.ProjectID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskStatisticsSnapshot)
	snap, err := j.Capturer.Capture(ctx, payload.ProjectID, payload.Timezone, j.clock())
	if errors.Is(err, statistics.ErrProjectNotFound) {
		j.log().Info("statistics target vanished", slog.Int64("project_id", payload.ProjectID))
		j.Metrics.AddSkipped(TaskStatisticsSnapshot)
		if j.Registry != nil {
			if err := j.Registry.Unregister(ctx, payload.ProjectID); err != nil {
				j.log().Warn("unregister vanished project", slog.Int64("project_id", payload.ProjectID), slog.Any("error", err))
			}
		}
		_ = tracker.End(nil)
		return fmt.Errorf("project %d: %w", payload.ProjectID, asynq.SkipRetry)
	}
	if err != nil {
		j.log().Error("capture statistics", slog.Int64("project_id", payload.ProjectID), slog.Any("error", err))
		return tracker.End(err)
	}
	j.log().Info("statistics captured",
		slog.Int64("project_id", snap.ProjectID),
		slog.Int("roles", snap.RoleCount),
		slog.Int("members", snap.MemberCount),
		slog.Int("active_api_keys", snap.ActiveAPIKeyCount))
	return tracker.End(nil)
}

func (j *StatisticsSnapshotJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// StatisticsConfigProvider feeds the periodic task manager from the registry.
type StatisticsConfigProvider struct {
	Registry ScheduleRegistry
	Logger   *slog.Logger
	Timeout  time.Duration
}

// GetConfigs implements asynq.PeriodicTaskConfigProvider.
func (p *StatisticsConfigProvider) GetConfigs() ([]*asynq.PeriodicTaskConfig, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	schedules, err := p.Registry.List(ctx)
	if err != nil {
		return nil, err
	}
	configs := make([]*asynq.PeriodicTaskConfig, 0, len(schedules))
	for _, s := range schedules {
		task, err := NewStatisticsSnapshotTask(s.ProjectID, s.Timezone)
		if err != nil {
			return nil, err
		}
		configs = append(configs, &asynq.PeriodicTaskConfig{
			Cronspec: s.Cronspec(),
			Task:     task,
			Opts:     []asynq.Option{asynq.MaxRetry(3)},
		})
	}
	if p.Logger != nil {
		p.Logger.Debug("statistics schedules synced", slog.Int("count", len(configs)))
	}
	return configs, nil
}

var _ asynq.PeriodicTaskConfigProvider = (*StatisticsConfigProvider)(nil)
