package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immopro/server/internal/analysis"
	"immopro/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newScenario(name string, price, resale float64, createdAt time.Time) *models.Scenario {
	record := models.NewPropertyRecord()
	record.Title = name
	record.Price = price
	record.Surface = 60
	record.NotaryFees = price * 0.08
	record.ResalePrice = resale

	s := models.NewScenario(name, analysis.Analyze(record))
	s.CreatedAt = createdAt
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("postgres", "whatever")
	assert.Error(t, err)
}

func TestSaveAndGetScenario(t *testing.T) {
	db := setupTestDB(t)
	s := newScenario("Studio", 100000, 150000, time.Now())

	require.NoError(t, db.SaveScenarios([]*models.Scenario{s}))

	got, err := db.GetScenario(s.ID)
	require.NoError(t, err)

	assert.Equal(t, "Studio", got.Name)
	assert.Equal(t, s.Property, got.Property)
	assert.Equal(t, s.ROI, got.ROI)
	assert.Equal(t, s.Recommendation, got.Recommendation)
	assert.Equal(t, s.RiskLevel, got.RiskLevel)
	assert.False(t, got.IsNotified())
}

func TestGetScenario_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetScenario("missing")
	assert.True(t, errors.Is(err, ErrScenarioNotFound))
}

func TestSaveScenarios_EmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.SaveScenarios(nil))
}

func TestSaveScenarios_RollsBackOnDuplicate(t *testing.T) {
	db := setupTestDB(t)
	first := newScenario("A", 100000, 150000, time.Now())
	require.NoError(t, db.SaveScenarios([]*models.Scenario{first}))

	fresh := newScenario("B", 100000, 150000, time.Now())
	duplicate := *first
	err := db.SaveScenarios([]*models.Scenario{fresh, &duplicate})
	assert.Error(t, err)

	count, err := db.CountScenarios()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListScenarios(t *testing.T) {
	db := setupTestDB(t)
	base := time.Now().Add(-time.Hour)

	var batch []*models.Scenario
	for i := 0; i < 5; i++ {
		batch = append(batch, newScenario(fmt.Sprintf("S%d", i), 100000, 100000+float64(i)*40000, base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, db.SaveScenarios(batch))

	tests := []struct {
		name           string
		limit          int
		recommendation models.Recommendation
		expectedFirst  string
		expectedCount  int
	}{
		{name: "Default limit", limit: 0, expectedFirst: "S4", expectedCount: 5},
		{name: "Limited", limit: 2, expectedFirst: "S4", expectedCount: 2},
		{name: "Filtered", limit: 10, recommendation: "UNKNOWN", expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenarios, err := db.ListScenarios(tt.limit, tt.recommendation)
			require.NoError(t, err)
			assert.Len(t, scenarios, tt.expectedCount)
			if tt.expectedFirst != "" {
				assert.Equal(t, tt.expectedFirst, scenarios[0].Name)
			}
		})
	}

	byTier, err := db.ListScenarios(10, batch[0].Recommendation)
	require.NoError(t, err)
	assert.NotEmpty(t, byTier)
	for _, s := range byTier {
		assert.Equal(t, batch[0].Recommendation, s.Recommendation)
	}
}

func TestDeleteScenario(t *testing.T) {
	db := setupTestDB(t)
	s := newScenario("Loft", 200000, 260000, time.Now())
	require.NoError(t, db.SaveScenarios([]*models.Scenario{s}))

	require.NoError(t, db.DeleteScenario(s.ID))

	err := db.DeleteScenario(s.ID)
	assert.True(t, errors.Is(err, ErrScenarioNotFound))
}

func TestMarkNotified(t *testing.T) {
	db := setupTestDB(t)
	a := newScenario("A", 100000, 150000, time.Now())
	b := newScenario("B", 100000, 150000, time.Now())
	require.NoError(t, db.SaveScenarios([]*models.Scenario{a, b}))

	require.NoError(t, db.MarkNotified([]string{a.ID}))
	require.NoError(t, db.MarkNotified(nil))

	gotA, err := db.GetScenario(a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.IsNotified())

	gotB, err := db.GetScenario(b.ID)
	require.NoError(t, err)
	assert.False(t, gotB.IsNotified())
}

func TestPruneScenariosBefore(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	old := newScenario("Old", 100000, 150000, now.Add(-48*time.Hour))
	recent := newScenario("Recent", 100000, 150000, now)
	require.NoError(t, db.SaveScenarios([]*models.Scenario{old, recent}))

	removed, err := db.PruneScenariosBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = db.GetScenario(old.ID)
	assert.True(t, errors.Is(err, ErrScenarioNotFound))
	_, err = db.GetScenario(recent.ID)
	assert.NoError(t, err)
}
