package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"immopro/server/config"
	"immopro/server/internal/database"
	"immopro/server/internal/logging"
	"immopro/server/internal/models"
	"immopro/server/internal/queue"
)

// Notifier delivers one scenario alert
type Notifier interface {
	IsEnabled() bool
	NotifyScenario(ctx context.Context, scenario *models.Scenario) error
}

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// AlertProcessor sends alerts for saved scenario batches taken from the queue
// and records which scenarios were notified
type AlertProcessor struct {
	db        Transactor
	queue     *queue.ScenarioQueue
	notifier  Notifier
	filter    *models.AlertFilter
	config    *config.Config
	logger    *logrus.Logger
	waitGroup sync.WaitGroup
	mu        sync.Mutex
	stopped   bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewAlertProcessor creates a new alert processor instance
func NewAlertProcessor(db Transactor, q *queue.ScenarioQueue, notifier Notifier, filter *models.AlertFilter, cfg *config.Config, logger *logrus.Logger) *AlertProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &AlertProcessor{
		db:       db,
		queue:    q,
		notifier: notifier,
		filter:   filter,
		config:   cfg,
		logger:   logging.OrDefault(logger),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// FilterFromConfig builds the alert filter from the configured thresholds
func FilterFromConfig(cfg *config.Config) *models.AlertFilter {
	minScore := cfg.Alerts.MinGlobalScore
	minROI := cfg.Alerts.MinROI
	return &models.AlertFilter{
		MinGlobalScore: &minScore,
		MinROI:         &minROI,
	}
}

// Start subscribes the processor to the queue
func (p *AlertProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.Scenario) error {
		return p.processBatch(batch)
	})
}

// Stop cancels pending retries and waits for in-flight batches
func (p *AlertProcessor) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.cancel()
	p.mu.Unlock()
	p.waitGroup.Wait()
}

// begin registers an in-flight batch. No batch is registered once Stop has
// started waiting.
func (p *AlertProcessor) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return context.Canceled
	}
	p.waitGroup.Add(1)
	return nil
}

// processBatch alerts on the matching scenarios of a batch, then marks the
// delivered ones notified in a transaction
func (p *AlertProcessor) processBatch(batch []*models.Scenario) error {
	if err := p.begin(); err != nil {
		return err
	}
	defer p.waitGroup.Done()
	if !p.notifier.IsEnabled() {
		p.logger.WithField("batch_size", len(batch)).Debug("Alerts disabled, skipping batch")
		return nil
	}

	selected := make([]*models.Scenario, 0, len(batch))
	for _, s := range batch {
		if s.IsNotified() || !p.filter.IsScenarioAllowed(s) {
			continue
		}
		selected = append(selected, s)
	}
	if len(selected) == 0 {
		return nil
	}

	delivered, failed := p.deliverAll(selected)

	if len(delivered) > 0 {
		if err := p.markNotified(delivered); err != nil {
			return err
		}
	}

	p.logger.WithFields(logrus.Fields{
		"batch_size": len(batch),
		"selected":   len(selected),
		"delivered":  len(delivered),
		"failed":     failed,
	}).Info("Processed alert batch")

	if failed > 0 {
		return fmt.Errorf("failed to deliver %d of %d alerts", failed, len(selected))
	}
	return nil
}

// deliverAll sends alerts with at most ProcessorCount in flight
func (p *AlertProcessor) deliverAll(scenarios []*models.Scenario) ([]string, int) {
	workers := p.config.Alerts.ProcessorCount
	if workers <= 0 {
		workers = 1
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		delivered = make([]string, 0, len(scenarios))
		failed    int
		sem       = make(chan struct{}, workers)
	)

	for _, s := range scenarios {
		wg.Add(1)
		sem <- struct{}{}
		go func(s *models.Scenario) {
			defer wg.Done()
			defer func() { <-sem }()

			err := p.deliver(s)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				p.logger.WithError(err).WithField("scenario_id", s.ID).Error("Alert delivery failed")
				return
			}
			delivered = append(delivered, s.ID)
		}(s)
	}
	wg.Wait()

	return delivered, failed
}

// deliver sends one alert, retrying on failure
func (p *AlertProcessor) deliver(s *models.Scenario) error {
	var err error
	for attempt := 0; attempt <= p.config.Alerts.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying alert delivery, attempt %d of %d", attempt, p.config.Alerts.MaxRetries)
			if waitErr := p.wait(); waitErr != nil {
				return waitErr
			}
		}

		err = p.notifier.NotifyScenario(p.ctx, s)
		if err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to deliver alert after %d attempts: %w", p.config.Alerts.MaxRetries+1, err)
}

func (p *AlertProcessor) markNotified(ids []string) error {
	now := time.Now()

	var err error
	for attempt := 0; attempt <= p.config.Alerts.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying notified update, attempt %d of %d", attempt, p.config.Alerts.MaxRetries)
			if waitErr := p.wait(); waitErr != nil {
				return waitErr
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			return database.MarkScenariosNotified(tx, ids, now)
		})
		if err == nil {
			return nil
		}
		p.logger.Errorf("Notified update failed: %v", err)
	}

	return fmt.Errorf("failed to mark scenarios notified after %d attempts: %w", p.config.Alerts.MaxRetries+1, err)
}

func (p *AlertProcessor) wait() error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case <-time.After(p.config.Alerts.RetryDelay):
		return nil
	}
}
