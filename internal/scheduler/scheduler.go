package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"immopro/server/config"
	"immopro/server/internal/logging"
)

// Pruner deletes scenarios created before a cutoff
type Pruner interface {
	PruneScenariosBefore(cutoff time.Time) (int64, error)
}

// SessionCounter reports the number of live editing sessions
type SessionCounter interface {
	Count() int
}

// Scheduler runs the periodic maintenance job
type Scheduler struct {
	cron      *cron.Cron
	pruner    Pruner
	sessions  SessionCounter
	logger    *logrus.Logger
	schedule  string
	retention time.Duration
	now       func() time.Time

	jobMutex  sync.Mutex // Ensures sequential job execution
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(pruner Pruner, sessions SessionCounter, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		pruner:    pruner,
		sessions:  sessions,
		logger:    logging.OrDefault(logger),
		schedule:  cfg.Retention.PruneSchedule,
		retention: time.Duration(cfg.Retention.ScenarioDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Start registers the maintenance job and starts the cron runner
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunMaintenance); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithFields(logrus.Fields{
		"schedule":       s.schedule,
		"retention_days": int(s.retention.Hours() / 24),
	}).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *Scheduler) Stop() {
	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// RunMaintenance prunes expired scenarios and reports session usage
func (s *Scheduler) RunMaintenance() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	if s.retention > 0 && s.pruner != nil {
		cutoff := s.now().Add(-s.retention)
		removed, err := s.pruner.PruneScenariosBefore(cutoff)
		if err != nil {
			s.logger.WithError(err).Error("Scenario pruning failed")
		} else {
			s.logger.WithFields(logrus.Fields{
				"cutoff":  cutoff.Format(time.RFC3339),
				"removed": removed,
			}).Info("Pruned expired scenarios")
		}
	}

	if s.sessions != nil {
		s.logger.WithField("live_sessions", s.sessions.Count()).Info("Session usage")
	}
}
