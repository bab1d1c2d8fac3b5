// Package market implements the marketplace operations: account and
// collection resolution, item queries, and the item lifecycle.
//
// Lookups that find nothing become apperr.NotFound, broken domain rules
// become apperr.Business, and storage failures are returned wrapped but
// otherwise unchanged.
package market

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/erazemk/mintmarket/internal/metrics"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
)

var errNotInitialized = errors.New("market service used before Init")

// Service runs marketplace operations against the database.
type Service struct {
	db      *sql.DB
	metrics *metrics.Metrics

	defaultName        string
	defaultDescription string

	mu                sync.RWMutex
	defaultCollection *model.Collection
}

// New returns a service whose default collection is named defaultName.
// Init must be called before the service is used.
func New(db *sql.DB, m *metrics.Metrics, defaultName, defaultDescription string) *Service {
	return &Service{
		db:                 db,
		metrics:            m,
		defaultName:        defaultName,
		defaultDescription: defaultDescription,
	}
}

// Init creates or loads the default collection.
func (s *Service) Init(ctx context.Context) error {
	c, err := store.EnsureDefaultCollection(ctx, s.db, s.defaultName, s.defaultDescription)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.defaultCollection = c
	s.mu.Unlock()

	slog.Info("default collection ready", "id", c.ID, "name", c.Name)
	return nil
}

// DefaultCollection returns the collection used when none is named.
func (s *Service) DefaultCollection() (*model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.defaultCollection == nil {
		return nil, errNotInitialized
	}
	return s.defaultCollection, nil
}
