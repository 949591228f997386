// Package notification derives the in-app notification feed from budgets
// that fall due soon and from money-received rows.
package notification

import (
	"context" // Deadlines
	"fmt"     // Message formatting
	"sort"    // Stable partition
	"time"    // Calendar math

	"campus_wallet/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

// DueSoonDays is the inclusive look-ahead for budget reminders
const DueSoonDays = 3

// Titles shown in the feed
const (
	TitleBudgetDue     = "Budget Due"
	TitleMoneyReceived = "Money Received"
)

// Source identifies the table an item came from
type Source string

const (
	SourceBudget Source = "budget"
	SourceMoney  Source = "money"
)

// ParseSource matches a source label
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceBudget, SourceMoney:
		return Source(s), true
	}
	return "", false
}

// Store is the part of the data gateway the deriver reads and writes
type Store interface {
	Budgets(ctx context.Context, profileID string) ([]domain.Budget, error)
	ReceivedNotifications(ctx context.Context, walletID string) ([]domain.Notification, error)
	MarkBudgetRead(ctx context.Context, profileID string, id uint) error
	MarkNotificationRead(ctx context.Context, walletID string, id uint) error
}

// Item is one entry of the feed
type Item struct {
	Source    Source          `json:"source"`
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Amount    decimal.Decimal `json:"amount"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// Deriver builds notification feeds
type Deriver struct {
	store Store
	loc   *time.Location // Calendar used for due dates
}

// NewDeriver creates a Deriver; a nil loc means UTC
func NewDeriver(store Store, loc *time.Location) *Deriver {
	if loc == nil {
		loc = time.UTC
	}
	return &Deriver{store: store, loc: loc}
}

// Feed returns the caller's budget reminders followed by money-received
// items, with unread items moved ahead of read ones.
func (d *Deriver) Feed(ctx context.Context, id domain.Identity, now time.Time) ([]Item, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	budgets, err := d.store.Budgets(ctx, id.ProfileID)
	if err != nil {
		return nil, err
	}
	received, err := d.store.ReceivedNotifications(ctx, id.ProfileID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(budgets)+len(received))
	for _, b := range budgets {
		days := d.daysUntil(b.EndDate, now)
		if days < 0 || days > DueSoonDays {
			continue
		}
		items = append(items, Item{
			Source:    SourceBudget,
			ID:        b.ID,
			Title:     TitleBudgetDue,
			Message:   fmt.Sprintf("Budget \"%s\" is due on %s.", b.Name, b.EndDate.Format("2006-01-02")),
			Amount:    b.Amount,
			Read:      b.Read,
			CreatedAt: b.CreatedAt,
		})
	}
	for _, n := range received {
		items = append(items, Item{
			Source:    SourceMoney,
			ID:        n.ID,
			Title:     TitleMoneyReceived,
			Message:   n.Message,
			Amount:    n.Amount,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return !items[i].Read && items[j].Read
	})
	return items, nil
}

// MarkRead persists the read flag and only then updates item.
// Marking an already-read item succeeds without change.
func (d *Deriver) MarkRead(ctx context.Context, id domain.Identity, item *Item) error {
	if !id.Valid() {
		return domain.ErrUnauthenticated
	}
	var err error
	switch item.Source {
	case SourceBudget:
		err = d.store.MarkBudgetRead(ctx, id.ProfileID, item.ID)
	case SourceMoney:
		err = d.store.MarkNotificationRead(ctx, id.ProfileID, item.ID)
	default:
		err = domain.Validation("unknown notification source")
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": id.ProfileID,
			"source":  item.Source,
			"id":      item.ID,
			"error":   err.Error(),
		}).Warn("Mark read failed")
		return err
	}
	item.Read = true
	return nil
}

// daysUntil counts calendar days from now to the due date in the deriver's
// calendar. The due date is a calendar date, so its own fields are used as-is.
func (d *Deriver) daysUntil(due, now time.Time) int {
	n := now.In(d.loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(today).Hours() / 24)
}
