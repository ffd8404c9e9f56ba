// Package session keeps the in-memory editing sessions. A session owns one
// property record and every mutation triggers a full recompute of its report.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"immopro/server/internal/analysis"
	"immopro/server/internal/listing"
	"immopro/server/internal/logging"
	"immopro/server/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid value")
)

// Session is a single-record editor. All access goes through its mutex.
type Session struct {
	ID string

	mu        sync.Mutex
	record    models.PropertyRecord
	report    models.Report
	updatedAt time.Time
}

// Report returns the last computed report
func (s *Session) Report() models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Record returns the current property record
func (s *Session) Record() models.PropertyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// UpdatedAt returns the time of the last mutation
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// replace must be called with mu held
func (s *Session) replace(record models.PropertyRecord) models.Report {
	s.report = analysis.Analyze(record)
	s.record = s.report.Property
	s.updatedAt = time.Now()
	return s.report
}

// Store holds sessions that expire after a period of inactivity
type Store struct {
	items  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewStore creates a session store
func NewStore(ttl, cleanupInterval time.Duration, logger *logrus.Logger) *Store {
	logger = logging.OrDefault(logger)

	items := cache.New(ttl, cleanupInterval)
	items.OnEvicted(func(id string, _ interface{}) {
		logger.WithField("session_id", id).Debug("Session evicted")
	})

	return &Store{
		items:  items,
		ttl:    ttl,
		logger: logger,
	}
}

// Create opens a session on initial, or on a default record when nil
func (st *Store) Create(initial *models.PropertyRecord) *Session {
	record := models.NewPropertyRecord()
	if initial != nil {
		record = *initial
	}

	s := &Session{ID: uuid.NewString()}
	s.replace(record)

	st.items.Set(s.ID, s, cache.DefaultExpiration)
	st.logger.WithField("session_id", s.ID).Info("Session created")
	return s
}

// Get returns a live session and extends its lifetime
func (st *Store) Get(id string) (*Session, error) {
	v, found := st.items.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s := v.(*Session)

	// Replace fails when the session was deleted concurrently, which is fine
	_ = st.items.Replace(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete closes a session
func (st *Store) Delete(id string) error {
	if _, found := st.items.Get(id); !found {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	st.items.Delete(id)
	st.logger.WithField("session_id", id).Info("Session deleted")
	return nil
}

// Count returns the number of live sessions, expired ones included until the
// next cleanup
func (st *Store) Count() int {
	return st.items.ItemCount()
}

// Update sets one field of the session record and returns the recomputed report
func (st *Store) Update(id, field string, value interface{}) (models.Report, error) {
	s, err := st.Get(id)
	if err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.record
	if err := SetField(&record, field, value); err != nil {
		return models.Report{}, err
	}

	st.logger.WithFields(logrus.Fields{
		"session_id": id,
		"field":      field,
	}).Debug("Session field updated")
	return s.replace(record), nil
}

// ApplyListing merges a listing patch into the session record
func (st *Store) ApplyListing(id string, patch listing.Patch) (models.Report, error) {
	s, err := st.Get(id)
	if err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(listing.Apply(s.record, &patch)), nil
}

// Replace swaps the whole record of a session. Records that a field edit
// would refuse are rejected with ErrInvalidValue.
func (st *Store) Replace(id string, record models.PropertyRecord) (models.Report, error) {
	s, err := st.Get(id)
	if err != nil {
		return models.Report{}, err
	}
	record, err = ValidateRecord(record)
	if err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(record), nil
}
