package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immopro/server/internal/analysis"
	"immopro/server/internal/database"
	"immopro/server/internal/listing"
	"immopro/server/internal/logging"
	"immopro/server/internal/models"
	"immopro/server/internal/queue"
	"immopro/server/internal/session"
)

// Handler serves the HTTP API
type Handler struct {
	db       *database.Database
	sessions *session.Store
	queue    *queue.ScenarioQueue
	logger   *logrus.Logger
}

// ListingRequest merges a listing patch into an optional base record
type ListingRequest struct {
	Property json.RawMessage `json:"property"`
	Patch    *listing.Patch  `json:"patch"`
}

// FieldUpdateRequest edits one field of a session record
type FieldUpdateRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// ScenarioRequest names a property record to save
type ScenarioRequest struct {
	Name     string          `json:"name"`
	Property json.RawMessage `json:"property"`
}

// StrategiesResponse lists the ranked strategies and the recommended one, if any
type StrategiesResponse struct {
	Strategies  []models.Strategy `json:"strategies"`
	Recommended *models.Strategy  `json:"recommended"`
}

type SessionResponse struct {
	ID     string        `json:"id"`
	Report models.Report `json:"report"`
}

// ScenarioResponse returns a saved scenario with its report recomputed
type ScenarioResponse struct {
	Scenario *models.Scenario `json:"scenario"`
	Report   models.Report    `json:"report"`
}

// NewHandler wires the handlers. queue may be nil, saved scenarios are then
// not forwarded to alerts.
func NewHandler(db *database.Database, sessions *session.Store, q *queue.ScenarioQueue, logger *logrus.Logger) *Handler {
	return &Handler{
		db:       db,
		sessions: sessions,
		queue:    q,
		logger:   logging.OrDefault(logger),
	}
}

// Health reports that the server is up
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDefaults returns the record a new analysis starts from
func (h *Handler) GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, models.NewPropertyRecord())
}

// bindRecord decodes a property record over the defaults and validates it.
// An empty body yields the default record.
func bindRecord(c *gin.Context) (models.PropertyRecord, error) {
	record := models.NewPropertyRecord()
	if err := c.ShouldBindJSON(&record); err != nil && !errors.Is(err, io.EOF) {
		return record, err
	}
	return session.ValidateRecord(record)
}

// decodeRecord is bindRecord for a record nested in a larger request
func decodeRecord(raw json.RawMessage) (models.PropertyRecord, error) {
	record := models.NewPropertyRecord()
	if len(raw) == 0 || string(raw) == "null" {
		return record, nil
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, err
	}
	return session.ValidateRecord(record)
}

func invalidRecord(c *gin.Context, err error) {
	if errors.Is(err, session.ErrInvalidValue) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property record"})
}

// Analyze returns the full report for a property record
func (h *Handler) Analyze(c *gin.Context) {
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.Analyze(record))
}

func (h *Handler) AnalyzeFinancials(c *gin.Context) {
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.CalculateFinancials(record.Normalized()))
}

// AnalyzeStrategies returns the strategies ranked by ROI
func (h *Handler) AnalyzeStrategies(c *gin.Context) {
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}

	ranked := analysis.RankStrategies(analysis.EvaluateStrategies(record.Normalized()))
	resp := StrategiesResponse{Strategies: ranked}
	if best, ok := analysis.RecommendedStrategy(ranked); ok {
		resp.Recommended = &best
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeRisks handles risk assessment for a property record
func (h *Handler) AnalyzeRisks(c *gin.Context) {
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}

	record = record.Normalized()
	financials := analysis.CalculateFinancials(record)
	c.JSON(http.StatusOK, analysis.AssessRisk(record, financials.ROI))
}

// ApplyListing merges listing data into a record and analyzes the result
func (h *Handler) ApplyListing(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing request"})
		return
	}

	record, err := decodeRecord(req.Property)
	if err != nil {
		invalidRecord(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.Analyze(listing.Apply(record, req.Patch)))
}

// CreateSession opens an editing session, from defaults when the body is empty
func (h *Handler) CreateSession(c *gin.Context) {
	var initial *models.PropertyRecord
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}
	if c.Request.ContentLength != 0 {
		initial = &record
	}

	s := h.sessions.Create(initial)
	c.JSON(http.StatusCreated, SessionResponse{ID: s.ID, Report: s.Report()})
}

func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: s.ID, Report: s.Report()})
}

// UpdateSession sets one field and returns the recomputed report
func (h *Handler) UpdateSession(c *gin.Context) {
	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field update"})
		return
	}

	id := c.Param("id")
	report, err := h.sessions.Update(id, req.Field, req.Value)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: id, Report: report})
}

// ReplaceSession swaps the whole record of a session
func (h *Handler) ReplaceSession(c *gin.Context) {
	record, err := bindRecord(c)
	if err != nil {
		invalidRecord(c, err)
		return
	}

	id := c.Param("id")
	report, err := h.sessions.Replace(id, record)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: id, Report: report})
}

// ApplySessionListing merges a listing patch into a session
func (h *Handler) ApplySessionListing(c *gin.Context) {
	var patch listing.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing patch"})
		return
	}

	id := c.Param("id")
	report, err := h.sessions.ApplyListing(id, patch)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: id, Report: report})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, session.ErrUnknownField), errors.Is(err, session.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("Session operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session operation failed"})
	}
}

// CreateScenarios accepts a single scenario object or a list of them
func (h *Handler) CreateScenarios(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	requests, err := decodeScenarioRequests(body)
	if err != nil || len(requests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario request"})
		return
	}

	scenarios := make([]*models.Scenario, 0, len(requests))
	for _, req := range requests {
		record, err := decodeRecord(req.Property)
		if err != nil {
			invalidRecord(c, err)
			return
		}
		scenarios = append(scenarios, models.NewScenario(req.Name, analysis.Analyze(record)))
	}

	if err := h.db.SaveScenarios(scenarios); err != nil {
		h.logger.WithError(err).Error("Failed to save scenarios")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scenarios"})
		return
	}

	if h.queue != nil {
		if err := h.queue.Push(scenarios); err != nil {
			h.logger.WithError(err).WithField("batch_size", len(scenarios)).Warn("Scenarios saved but not queued for alerts")
		}
	}

	c.JSON(http.StatusCreated, scenarios)
}

func decodeScenarioRequests(body []byte) ([]ScenarioRequest, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []ScenarioRequest
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single ScenarioRequest
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []ScenarioRequest{single}, nil
}

// ListScenarios handles the retrieval of saved scenarios, newest first
func (h *Handler) ListScenarios(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	scenarios, err := h.db.ListScenarios(limit, models.Recommendation(c.Query("recommendation")))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list scenarios")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list scenarios"})
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

// GetScenario returns one saved scenario
func (h *Handler) GetScenario(c *gin.Context) {
	scenario, err := h.db.GetScenario(c.Param("id"))
	if err != nil {
		h.scenarioError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScenarioResponse{
		Scenario: scenario,
		Report:   analysis.Analyze(scenario.Property),
	})
}

func (h *Handler) DeleteScenario(c *gin.Context) {
	if err := h.db.DeleteScenario(c.Param("id")); err != nil {
		h.scenarioError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) scenarioError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrScenarioNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return
	}
	h.logger.WithError(err).Error("Scenario operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Scenario operation failed"})
}
