package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatisticsSnapshot captures the daily access snapshot of a project.
	TaskStatisticsSnapshot = "statistics:snapshot"
)
