package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"lifelevel/internal/engine"
)

// ReminderChecker fires due reminders. *engine.Service implements it.
type ReminderChecker interface {
	CheckReminders(ctx context.Context) ([]engine.ReminderNotice, error)
}

type Config struct {
	Enabled bool
	// Spec is a five-field cron expression.
	Spec    string
	Timeout time.Duration
}

// Scheduler runs the reminder check on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	checker ReminderChecker
	config  Config
	logger  *log.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

func New(cfg Config, checker ReminderChecker, logger *log.Logger) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scheduler{
		cron:    newCron(),
		checker: checker,
		config:  cfg,
		logger:  logger,
	}
}

func newCron() *cron.Cron {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}

// ValidateSpec reports whether spec parses as a schedule.
func ValidateSpec(spec string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("reminder scheduler disabled by config")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	id, err := s.cron.AddFunc(s.config.Spec, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.started = true
	s.logger.Info("reminder scheduler started", "spec", s.config.Spec)
	return nil
}

// RunOnce performs a single reminder check.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	notices, err := s.checker.CheckReminders(ctx)
	if err != nil {
		s.logger.Error("reminder check failed", "err", err)
		return 0
	}
	for _, n := range notices {
		s.logger.Info("reminder", "activity", n.Activity.Name, "area", n.Activity.AreaID, "at", n.Plan.ReminderTime)
	}
	return len(notices)
}

// Next returns the next scheduled run, or the zero time if not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
}
