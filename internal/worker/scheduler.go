package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
)

const profileJobName = "conversation_profiles"

// Scheduler runs the periodic profile recompute on a cron schedule in the
// business timezone.
type Scheduler struct {
	scheduler gocron.Scheduler
	profiles  service.ProfileService
	logger    *slog.Logger
}

func NewScheduler(profiles service.ProfileService, cronExpr string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cronExpr == "" {
		return nil, errors.New("empty cron expression")
	}
	if loc == nil {
		loc = time.UTC
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(&gocronLogAdapter{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	sch := &Scheduler{scheduler: s, profiles: profiles, logger: logger}
	job, err := s.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(sch.runProfiles),
		gocron.WithName(profileJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("scheduling %s: %w", profileJobName, err)
	}

	attrs := []any{"job_name", profileJobName, "cron", cronExpr, "location", loc.String()}
	if next, err := job.NextRun(); err == nil {
		attrs = append(attrs, "next_run", next.Format(time.RFC3339))
	}
	logger.Info("job scheduled", attrs...)
	return sch, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Shutdown waits for a running job to finish.
func (s *Scheduler) Shutdown() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}
	return nil
}

// TriggerProfiles starts a profile recompute in the background, outside
// the schedule. A run already in progress makes it a no-op.
func (s *Scheduler) TriggerProfiles() {
	go s.runProfiles()
}

func (s *Scheduler) runProfiles() {
	ctx := logger.WithLogFields(context.Background(), logger.LogFields{Component: "cs.worker.scheduler"})

	res, err := s.profiles.Recompute(ctx)
	if err != nil {
		if errors.Is(err, service.ErrProfileRunInProgress) {
			s.logger.InfoContext(ctx, "profile recompute already running")
			return
		}
		s.logger.ErrorContext(ctx, "profile recompute failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "profile recompute finished", "updated", res.Updated, "failed", res.Failed)
}

type gocronLogAdapter struct {
	logger *slog.Logger
}

func (l *gocronLogAdapter) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *gocronLogAdapter) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *gocronLogAdapter) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *gocronLogAdapter) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
