// Package tracker implements the budget tracker operations on top of the
// store. Every operation takes the caller's user id and never reads or
// writes rows owned by anyone else.
package tracker

import (
	"errors"
	"log/slog"
	"time"

	"budgettracker/internal/notify"
	"budgettracker/internal/store"

	"github.com/google/uuid"
)

// Service holds the dependencies of the tracker operations.
type Service struct {
	store  *store.Store
	alerts notify.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Service. A nil publisher disables budget alerts.
func New(st *store.Store, alerts notify.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if alerts == nil {
		alerts = notify.Noop{Logger: logger}
	}
	return &Service{store: st, alerts: alerts, logger: logger, now: time.Now}
}

// Store exposes the underlying store for health checks and tools.
func (s *Service) Store() *store.Store { return s.store }

// parseRef validates an identifier referenced from a request body.
func parseRef(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, invalid(field, field+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid(field, field+" must be a valid id")
	}
	return id, nil
}

// mapNotFound replaces store.ErrNotFound with a named NotFoundError.
func mapNotFound(err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(resource)
	}
	return err
}
