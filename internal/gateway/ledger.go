package gateway

import (
	"context" // Deadlines
	"time"    // Date filters

	"campus_wallet/internal/domain" // Importing domain models
)

// TxFilter narrows the admin ledger listing
type TxFilter struct {
	WalletID string     // Sender or recipient
	Type     string     // Exact purpose label
	From     *time.Time // Inclusive lower bound
	To       *time.Time // Inclusive upper bound
}

// Wallet fetches the wallet row of one identity
func (s *Store) Wallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var w domain.Wallet
	if err := db.Where("wallet_id = ?", walletID).Take(&w).Error; err != nil {
		return nil, translate(err, "wallet")
	}
	return &w, nil
}

// InsertTransaction appends one ledger row; settlement runs in the same database transaction
func (s *Store) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	db, cancel := s.with(ctx)
	defer cancel()
	return translate(db.Create(t).Error, "transaction")
}

// SentTransactions lists the ledger rows a wallet initiated, newest first
func (s *Store) SentTransactions(ctx context.Context, walletID string) ([]domain.Transaction, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []domain.Transaction
	err := db.Where("wallet_id = ?", walletID).
		Order("created_at desc, id desc").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "transaction")
	}
	return out, nil
}

// ListTransactions pages through the whole ledger with optional filters
func (s *Store) ListTransactions(ctx context.Context, f TxFilter, offset, limit int) ([]domain.Transaction, int64, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	query := db.Model(&domain.Transaction{}) // Start building the query
	if f.WalletID != "" {
		query = query.Where("wallet_id = ? OR recipient_id = ?", f.WalletID, f.WalletID) // Filter by wallet
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type) // Filter by transaction type
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From) // Filter by start date
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To) // Filter by end date
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "transaction")
	}
	var out []domain.Transaction
	if err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, translate(err, "transaction")
	}
	return out, total, nil
}

// ReceivedNotifications lists money-received rows for a wallet, newest first
func (s *Store) ReceivedNotifications(ctx context.Context, walletID string) ([]domain.Notification, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []domain.Notification
	err := db.Where("wallet_id = ?", walletID).
		Order("created_at desc, id desc").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "notification")
	}
	return out, nil
}

// MarkNotificationRead sets the read flag on a notification the wallet owns
func (s *Store) MarkNotificationRead(ctx context.Context, walletID string, id uint) error {
	return s.markRead(ctx, &domain.Notification{}, "wallet_id", walletID, id, "notification")
}

// Budgets lists a profile's budgets by due date
func (s *Store) Budgets(ctx context.Context, profileID string) ([]domain.Budget, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []domain.Budget
	if err := db.Where("profile_id = ?", profileID).Order("end_date, id").Find(&out).Error; err != nil {
		return nil, translate(err, "budget")
	}
	return out, nil
}

// CreateBudget inserts a planned expense
func (s *Store) CreateBudget(ctx context.Context, b *domain.Budget) error {
	db, cancel := s.with(ctx)
	defer cancel()
	return translate(db.Create(b).Error, "budget")
}

// MarkBudgetRead sets the read flag on a budget the profile owns
func (s *Store) MarkBudgetRead(ctx context.Context, profileID string, id uint) error {
	return s.markRead(ctx, &domain.Budget{}, "profile_id", profileID, id, "budget")
}

// markRead flips read to true on an owned row. Already-read rows succeed unchanged.
func (s *Store) markRead(ctx context.Context, model any, ownerCol, owner string, id uint, what string) error {
	db, cancel := s.with(ctx)
	defer cancel()
	var n int64
	if err := db.Model(model).Where("id = ? AND "+ownerCol+" = ?", id, owner).Count(&n).Error; err != nil {
		return translate(err, what)
	}
	if n == 0 {
		return domain.NotFound(what + " not found")
	}
	err := db.Model(model).Where("id = ? AND "+ownerCol+" = ?", id, owner).Update("read", true).Error
	return translate(err, what)
}
