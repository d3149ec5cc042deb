package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/export"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain log entries.
	// 0 means keep logs forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving logs before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived logs.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// RunRecorder receives the outcome of retention runs. The telemetry
// metrics collector satisfies it.
type RunRecorder interface {
	RecordRetentionRun(status string, deleted int64, duration time.Duration)
	RecordLogsArchived(count int64)
}

// Pruner enforces the retention policy on habit logs.
type Pruner struct {
	store     storage.Store
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	recorder  RunRecorder

	// now is the clock used to compute the cutoff. Overridable in tests.
	now func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(store storage.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "habit.retention"),
		now:    time.Now,
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// SetRecorder wires a metrics recorder into the pruner. A nil recorder
// disables recording. Call before Start.
func (p *Pruner) SetRecorder(r RunRecorder) {
	p.recorder = r
}

// Prune deletes log entries older than the retention period, archiving
// them first when configured. Returns the number of entries deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	start := time.Now()
	cutoff := p.cutoffDate()

	p.logger.Debug("pruning logs by age",
		"cutoff_date", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, cutoff); err != nil {
			p.recordRun("error", 0, time.Since(start))
			return 0, habit.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.store.DeleteLogsBefore(ctx, cutoff)
	if err != nil {
		p.recordRun("error", 0, time.Since(start))
		return 0, habit.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted == 0 {
		p.logger.Debug("no logs pruned", "retention_days", p.config.RetentionDays)
	} else {
		p.logger.Info("log pruning completed",
			"deleted_count", deleted,
			"cutoff_date", cutoff,
			"retention_days", p.config.RetentionDays,
		)
	}

	p.recordRun("success", deleted, time.Since(start))

	return deleted, nil
}

// recordRun reports a run outcome to the recorder, if one is wired.
func (p *Pruner) recordRun(status string, deleted int64, elapsed time.Duration) {
	if p.recorder != nil {
		p.recorder.RecordRetentionRun(status, deleted, elapsed)
	}
}

// DryRun counts the log entries a Prune call would delete right now
// without deleting anything.
func (p *Pruner) DryRun(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	_, count, err := p.collectExpiring(ctx, p.cutoffDate())
	if err != nil {
		return 0, habit.NewRetentionError(p.config.RetentionDays, err)
	}
	return count, nil
}

// cutoffDate computes the first date that is still retained. Entries dated
// strictly before it are expired.
func (p *Pruner) cutoffDate() string {
	return p.now().UTC().AddDate(0, 0, -p.config.RetentionDays).Format(habit.DateFormat)
}

// collectExpiring gathers the log entries dated before the cutoff, grouped
// per habit for archiving.
func (p *Pruner) collectExpiring(ctx context.Context, cutoff string) ([]*export.Snapshot, int64, error) {
	habits, err := p.store.ListHabits(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list habits: %w", err)
	}

	// ListLogs bounds are inclusive; expiry is strict, so query up to the
	// day before the cutoff.
	lastExpiredDay := dayBefore(cutoff)

	var snapshots []*export.Snapshot
	var count int64
	for _, h := range habits {
		logs, err := p.store.ListLogs(ctx, h.ID, "", lastExpiredDay)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list logs for habit %d: %w", h.ID, err)
		}
		if len(logs) == 0 {
			continue
		}
		snapshots = append(snapshots, &export.Snapshot{Habit: h, Logs: logs})
		count += int64(len(logs))
	}

	return snapshots, count, nil
}

// archive exports expiring log entries to a dated JSON file.
func (p *Pruner) archive(ctx context.Context, cutoff string) error {
	snapshots, count, err := p.collectExpiring(ctx, cutoff)
	if err != nil {
		return err
	}

	if count == 0 {
		p.logger.Debug("no logs to archive")
		return nil
	}

	p.logger.Info("archiving logs before deletion", "log_count", count)

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("habit-logs-%s.json", p.now().Format("2006-01-02")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, snapshots, f); err != nil {
		return fmt.Errorf("failed to export logs to archive: %w", err)
	}

	p.logger.Info("logs archived",
		"archive_file", archiveFile,
		"log_count", count,
	)

	if p.recorder != nil {
		p.recorder.RecordLogsArchived(count)
	}

	return nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

// dayBefore returns the calendar day preceding the given date.
func dayBefore(date string) string {
	day, err := time.Parse(habit.DateFormat, date)
	if err != nil {
		return date
	}
	return day.AddDate(0, 0, -1).Format(habit.DateFormat)
}
