package wallet

import (
	"context" // Deadlines
	"sort"    // Stable ordering
	"sync"    // In-flight bookkeeping
	"time"    // Timestamps

	"campus_wallet/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact money arithmetic
	"golang.org/x/sync/errgroup"    // Concurrent fetches
)

// Placeholders used when a counterparty cannot be named
const (
	UnknownRecipient = "Unknown Recipient"
	UnknownSender    = "Unknown Sender"
)

// Direction tags a history record from the caller's point of view
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// State is the lifecycle of a history view
type State string

const (
	StateIdle    State = "idle"    // Never loaded
	StateLoading State = "loading" // Fetch in flight
	StateEmpty   State = "empty"   // Loaded, nothing to show
	StateReady   State = "ready"   // Loaded with records
)

// HistorySource is the read side of the ledger
type HistorySource interface {
	SentTransactions(ctx context.Context, walletID string) ([]domain.Transaction, error)
	ReceivedNotifications(ctx context.Context, walletID string) ([]domain.Notification, error)
}

// Record is one row of the merged history
type Record struct {
	ID           uint            `json:"id"`
	Direction    Direction       `json:"direction"`
	Type         domain.TxType   `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"` // Recipient or sender display name
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// History is the merged, newest-first view of sent and received money
type History struct {
	State    State           `json:"state"`
	Records  []Record        `json:"records"`
	Income   decimal.Decimal `json:"income"`   // Cash-ins plus money received
	Expenses decimal.Decimal `json:"expenses"` // Every debit
}

// Aggregator builds histories and tracks the state of each identity's view
type Aggregator struct {
	src   HistorySource
	names NameResolver

	mu       sync.Mutex
	inflight map[string]int   // Profile id -> running History calls
	last     map[string]State // Profile id -> state of the last result
}

// NewAggregator creates an Aggregator
func NewAggregator(src HistorySource, names NameResolver) *Aggregator {
	return &Aggregator{
		src:      src,
		names:    names,
		inflight: make(map[string]int),
		last:     make(map[string]State),
	}
}

// Status reports the view state of one identity
func (a *Aggregator) Status(id domain.Identity) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[id.ProfileID] > 0 {
		return StateLoading
	}
	if s, ok := a.last[id.ProfileID]; ok {
		return s
	}
	return StateIdle
}

// History fetches sent transactions and received notifications concurrently
// and merges them strictly by timestamp, newest first.
func (a *Aggregator) History(ctx context.Context, id domain.Identity) (*History, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	a.begin(id.ProfileID)
	h, err := a.load(ctx, id)
	a.end(id.ProfileID, h)
	return h, err
}

func (a *Aggregator) begin(profileID string) {
	a.mu.Lock()
	a.inflight[profileID]++
	a.mu.Unlock()
}

func (a *Aggregator) end(profileID string, h *History) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[profileID]--; a.inflight[profileID] <= 0 {
		delete(a.inflight, profileID)
	}
	if h != nil {
		a.last[profileID] = h.State
	}
}

func (a *Aggregator) load(ctx context.Context, id domain.Identity) (*History, error) {
	var (
		sent     []domain.Transaction
		received []domain.Notification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.src.SentTransactions(gctx, id.ProfileID)
		sent = rows
		return err
	})
	g.Go(func() error {
		rows, err := a.src.ReceivedNotifications(gctx, id.ProfileID)
		received = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string) // Resolved once per call
	resolve := func(pid *string, placeholder string) string {
		if pid == nil || *pid == "" {
			return placeholder
		}
		if n, ok := names[*pid]; ok {
			return n
		}
		n, err := a.names.Name(ctx, *pid)
		if err != nil || n == "" {
			n = placeholder
		}
		names[*pid] = n
		return n
	}

	h := &History{Records: make([]Record, 0, len(sent)+len(received)), Income: decimal.Zero, Expenses: decimal.Zero}
	for _, t := range sent {
		r := Record{
			ID:          t.ID,
			Direction:   Sent,
			Type:        t.Type,
			Amount:      t.Amount,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		}
		if t.Type.ImpliesRecipient() {
			r.Counterparty = resolve(t.RecipientID, UnknownRecipient)
		}
		if t.Type.IsDebit() {
			h.Expenses = h.Expenses.Add(t.Amount)
		} else {
			h.Income = h.Income.Add(t.Amount)
		}
		h.Records = append(h.Records, r)
	}
	for _, n := range received {
		h.Records = append(h.Records, Record{
			ID:           n.ID,
			Direction:    Received,
			Type:         domain.TxSendMoney,
			Amount:       n.Amount,
			Counterparty: resolve(n.SenderID, UnknownSender),
			Description:  n.Message,
			CreatedAt:    n.CreatedAt,
		})
		h.Income = h.Income.Add(n.Amount)
	}
	sort.SliceStable(h.Records, func(i, j int) bool {
		return h.Records[i].CreatedAt.After(h.Records[j].CreatedAt)
	})
	h.State = StateReady
	if len(h.Records) == 0 {
		h.State = StateEmpty
	}
	return h, nil
}
