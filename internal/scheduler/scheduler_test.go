package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"immopro/server/config"
)

type MockPruner struct {
	mock.Mock
}

func (m *MockPruner) PruneScenariosBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func testConfig(days int, schedule string) *config.Config {
	cfg := &config.Config{}
	cfg.Retention.ScenarioDays = days
	cfg.Retention.PruneSchedule = schedule
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestRunMaintenance_Prunes(t *testing.T) {
	pruner := &MockPruner{}
	s := NewScheduler(pruner, fixedCounter(2), testConfig(30, "@daily"), quietLogger())
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	pruner.On("PruneScenariosBefore", now.Add(-30*24*time.Hour)).Return(int64(4), nil).Once()

	s.RunMaintenance()

	pruner.AssertExpectations(t)
}

func TestRunMaintenance_RetentionDisabled(t *testing.T) {
	pruner := &MockPruner{}
	s := NewScheduler(pruner, fixedCounter(0), testConfig(0, "@daily"), quietLogger())

	s.RunMaintenance()

	pruner.AssertNotCalled(t, "PruneScenariosBefore", mock.Anything)
}

func TestRunMaintenance_PruneError(t *testing.T) {
	pruner := &MockPruner{}
	s := NewScheduler(pruner, nil, testConfig(7, "@daily"), quietLogger())

	pruner.On("PruneScenariosBefore", mock.Anything).Return(int64(0), errors.New("locked")).Once()

	assert.NotPanics(t, s.RunMaintenance)
	pruner.AssertExpectations(t)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&MockPruner{}, nil, testConfig(0, "@every 1h"), quietLogger())

	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)

	s.Stop()
	assert.False(t, s.isRunning)

	// stopping twice is a no-op
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&MockPruner{}, nil, testConfig(1, "every tuesday"), quietLogger())
	assert.Error(t, s.Start())
}
