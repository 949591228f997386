// Package gateway is the data gateway: typed access to profiles, wallets, the
// ledger, notifications, budgets and inventory. Every storage failure leaves
// this package as a *domain.Error.
package gateway

import (
	"context" // Deadlines for every call
	"errors"  // Error inspection
	"time"    // Timeout durations

	"campus_wallet/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// DefaultTimeout bounds calls when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Store is the gorm-backed gateway
type Store struct {
	db      *gorm.DB      // Database handle
	timeout time.Duration // Per-call deadline
}

// New creates a Store; a non-positive timeout falls back to DefaultTimeout
func New(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout}
}

// DB exposes the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// with returns a context-bound session and its cancel func
func (s *Store) with(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// translate converts a storage error into the domain taxonomy.
// what names the missing entity for not-found errors.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	switch {
	case errors.As(err, &de):
		return de
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict(what + " already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return domain.Gateway("request timed out")
	case errors.Is(err, context.Canceled):
		return domain.Gateway("request canceled")
	default:
		return domain.Gateway(err.Error())
	}
}
