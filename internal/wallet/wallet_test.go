package wallet

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campus_wallet/internal/domain"
	"campus_wallet/internal/gateway"
	"campus_wallet/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeGateway is an in-memory Ledger that counts every call
type fakeGateway struct {
	calls    atomic.Int32
	profiles []domain.Profile
	wallets  map[string]decimal.Decimal
	inserted []domain.Transaction
	failWith error
}

func newFake(balances map[string]int64, profiles ...domain.Profile) *fakeGateway {
	f := &fakeGateway{profiles: profiles, wallets: make(map[string]decimal.Decimal)}
	for id, b := range balances {
		f.wallets[id] = decimal.NewFromInt(b)
	}
	return f
}

func (f *fakeGateway) Wallet(ctx context.Context, id string) (*domain.Wallet, error) {
	f.calls.Add(1)
	b, ok := f.wallets[id]
	if !ok {
		return nil, domain.NotFound("wallet not found")
	}
	return &domain.Wallet{WalletID: id, Balance: b, Currency: "PHP"}, nil
}

func (f *fakeGateway) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	f.calls.Add(1)
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			p := f.profiles[i]
			return &p, nil
		}
	}
	return nil, domain.NotFound("profile not found")
}

func (f *fakeGateway) SearchProfiles(ctx context.Context, fragment string, limit int) ([]domain.Profile, error) {
	f.calls.Add(1)
	var out []domain.Profile
	for _, p := range f.profiles {
		if strings.Contains(strings.ToLower(p.Username), strings.ToLower(fragment)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGateway) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	f.calls.Add(1)
	if f.failWith != nil {
		return f.failWith
	}
	t.ID = uint(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *t)
	return nil
}

var alice = domain.Identity{ProfileID: "alice", Role: "user"}

func TestSubmitRejectsBadInputBeforeGateway(t *testing.T) {
	f := newFake(map[string]int64{"alice": 1000})
	r := NewRecorder(f, "PHP")
	ctx := context.Background()

	_, err := r.Submit(ctx, alice, &Form{Purpose: "", Amount: "10"})
	assert.ErrorIs(t, err, domain.ErrMissingPurpose)
	_, err = r.Submit(ctx, alice, &Form{Purpose: "Withdraw", Amount: "10"})
	assert.ErrorIs(t, err, domain.ErrMissingPurpose)

	for _, amt := range []string{"", "0", "-1", "-0.01", "abc", "NaN", "Inf", "1.234",
		"1e1000000000", "1e-1000000000", "1e30", "100000000000000000000"} {
		for _, purpose := range domain.TxTypes {
			_, err := r.Submit(ctx, alice, &Form{Purpose: string(purpose), Amount: amt, RecipientQuery: "bob"})
			assert.ErrorIs(t, err, domain.ErrInvalidAmount, "%s %q", purpose, amt)
		}
	}
	assert.EqualValues(t, 0, f.calls.Load(), "no gateway call before the amount parses")

	_, err = r.Submit(ctx, domain.Identity{}, &Form{Purpose: "Cash In", Amount: "10"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.EqualValues(t, 0, f.calls.Load())
}

func TestSubmitMissingRecipient(t *testing.T) {
	f := newFake(map[string]int64{"alice": 1000})
	r := NewRecorder(f, "PHP")
	_, err := r.Submit(context.Background(), alice, &Form{Purpose: "Send Money", Amount: "10"})
	assert.ErrorIs(t, err, domain.ErrMissingRecipient)
	assert.EqualValues(t, 0, f.calls.Load())
}

func TestSubmitSelfTransfer(t *testing.T) {
	me := domain.Profile{ID: "alice", Username: "Alice"}
	f := newFake(map[string]int64{"alice": 10}, me)
	r := NewRecorder(f, "PHP")
	for _, amt := range []string{"1", "10", "999999"} {
		_, err := r.Submit(context.Background(), alice, &Form{Purpose: "Send Money", Amount: amt, Recipient: &me})
		assert.ErrorIs(t, err, domain.ErrSelfTransfer, amt)
	}
	assert.Empty(t, f.inserted)
}

func TestSubmitInsufficientFunds(t *testing.T) {
	bob := domain.Profile{ID: "bob", Username: "Bob"}
	f := newFake(map[string]int64{"alice": 100, "bob": 0}, bob)
	r := NewRecorder(f, "PHP")
	form := &Form{Purpose: "Send Money", Amount: "150", Recipient: &bob}
	_, err := r.Submit(context.Background(), alice, form)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Empty(t, f.inserted, "no insert is attempted")
	assert.Equal(t, "150", form.Amount, "form is left intact on failure")

	_, err = r.Submit(context.Background(), alice, &Form{Purpose: "Pay Fee", Amount: "100.01"})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestSubmitGatewayFailureKeepsForm(t *testing.T) {
	f := newFake(map[string]int64{"alice": 100})
	f.failWith = domain.Gateway("connection refused")
	r := NewRecorder(f, "PHP")
	form := &Form{Purpose: "Pay Bills", Amount: "20"}
	_, err := r.Submit(context.Background(), alice, form)
	require.Error(t, err)
	assert.Equal(t, "connection refused", domain.Message(err))
	assert.Equal(t, "Pay Bills", form.Purpose)
	assert.Equal(t, "20", form.Amount)
}

func TestResolveRecipient(t *testing.T) {
	f := newFake(nil,
		domain.Profile{ID: "1", Username: "Alice Reyes"},
		domain.Profile{ID: "2", Username: "alice"},
		domain.Profile{ID: "3", Username: "Malice"},
	)
	r := NewRecorder(f, "PHP")
	ctx := context.Background()

	p, all, err := r.ResolveRecipient(ctx, alice, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "2", p.ID, "exact match wins")
	assert.Len(t, all, 3)

	p, _, err = r.ResolveRecipient(ctx, alice, "reyes")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)

	_, _, err = r.ResolveRecipient(ctx, alice, "zed")
	assert.ErrorIs(t, err, domain.ErrNoSuchUser)
}

func TestSubmitSettlesAgainstDatabase(t *testing.T) {
	store := gateway.New(testutil.OpenDB(t), time.Second)
	testutil.SeedAccount(t, store.DB(), "alice", "Alice", 500)
	testutil.SeedAccount(t, store.DB(), "bob", "Bob", 0)
	r := NewRecorder(store, "PHP")
	ctx := context.Background()

	form := &Form{Purpose: "Send Money", Amount: "500", RecipientQuery: "bob"}
	rec, err := r.Submit(ctx, alice, form)
	require.NoError(t, err)
	assert.Equal(t, "Sent PHP 500.00 to Bob", rec.Transaction.Description)
	require.NotNil(t, rec.Wallet)
	assert.True(t, rec.Wallet.Balance.IsZero(), "sender balance %s", rec.Wallet.Balance)
	assert.Equal(t, Form{}, *form, "form is reset after success")

	bob, err := r.Balances().Balance(ctx, domain.Identity{ProfileID: "bob"})
	require.NoError(t, err)
	assert.True(t, bob.Balance.Equal(decimal.NewFromInt(500)))

	rec, err = r.Submit(ctx, alice, &Form{Purpose: "Cash In", Amount: "25.50"})
	require.NoError(t, err)
	assert.Equal(t, "Cash-in transaction for Student ID: S-alice", rec.Transaction.Description)
	assert.True(t, rec.Wallet.Balance.Equal(decimal.RequireFromString("25.5")))

	rec, err = r.Submit(ctx, alice, &Form{Purpose: "Pay Fee", Amount: "5"})
	require.NoError(t, err)
	assert.Equal(t, "Pay Fee of PHP 5.00", rec.Transaction.Description)
}

func TestSubmitUnknownRecipientQuery(t *testing.T) {
	store := gateway.New(testutil.OpenDB(t), time.Second)
	testutil.SeedAccount(t, store.DB(), "alice", "Alice", 100)
	r := NewRecorder(store, "PHP")
	_, err := r.Submit(context.Background(), alice, &Form{Purpose: "Send Money", Amount: "10", RecipientQuery: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNoSuchUser)
}

func TestBalanceReader(t *testing.T) {
	f := newFake(map[string]int64{"alice": 42})
	b := NewBalanceReader(f)
	w, err := b.Balance(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(42)))

	_, err = b.Balance(context.Background(), domain.Identity{ProfileID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = b.Balance(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// fakeHistory serves fixed rows, optionally blocking until released
type fakeHistory struct {
	sent     []domain.Transaction
	received []domain.Notification
	gate     chan struct{}
	err      error
}

func (f *fakeHistory) SentTransactions(ctx context.Context, id string) ([]domain.Transaction, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.sent, f.err
}

func (f *fakeHistory) ReceivedNotifications(ctx context.Context, id string) ([]domain.Notification, error) {
	return f.received, nil
}

type mapNames map[string]string

func (m mapNames) Name(ctx context.Context, id string) (string, error) {
	if n, ok := m[id]; ok {
		return n, nil
	}
	return "", errors.New("lookup failed")
}

func strPtr(s string) *string { return &s }

func TestHistoryMergesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeHistory{
		sent: []domain.Transaction{
			{ID: 1, Type: domain.TxSendMoney, Amount: decimal.NewFromInt(50), RecipientID: strPtr("bob"), CreatedAt: base.Add(3 * time.Hour)},
			{ID: 2, Type: domain.TxSendMoney, Amount: decimal.NewFromInt(20), RecipientID: strPtr("gone"), CreatedAt: base.Add(time.Hour)},
			{ID: 3, Type: domain.TxCashIn, Amount: decimal.NewFromInt(100), CreatedAt: base},
		},
		received: []domain.Notification{
			{ID: 9, Amount: decimal.NewFromInt(5), SenderID: strPtr("bob"), Message: "You received PHP 5.00 from Bob.", CreatedAt: base.Add(2 * time.Hour)},
			{ID: 8, Amount: decimal.NewFromInt(7), Message: "You received PHP 7.00 from another user.", CreatedAt: base.Add(time.Hour)},
		},
	}
	a := NewAggregator(src, mapNames{"bob": "Bob"})
	h, err := a.History(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, StateReady, h.State)
	require.Len(t, h.Records, 5)

	for i := 1; i < len(h.Records); i++ {
		assert.False(t, h.Records[i].CreatedAt.After(h.Records[i-1].CreatedAt), "history must be non-increasing")
	}
	assert.Equal(t, "Bob", h.Records[0].Counterparty)
	// Equal timestamps keep sent before received
	assert.Equal(t, Sent, h.Records[2].Direction)
	assert.Equal(t, UnknownRecipient, h.Records[2].Counterparty, "failed lookups keep the row")
	assert.Equal(t, Received, h.Records[3].Direction)
	assert.Equal(t, UnknownSender, h.Records[3].Counterparty)

	assert.True(t, h.Income.Equal(decimal.NewFromInt(112)))
	assert.True(t, h.Expenses.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, StateReady, a.Status(alice))
}

func TestHistoryEmptyAndFailure(t *testing.T) {
	a := NewAggregator(&fakeHistory{}, mapNames{})
	assert.Equal(t, StateIdle, a.Status(alice))
	h, err := a.History(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, h.State)
	assert.NotNil(t, h.Records)

	a = NewAggregator(&fakeHistory{err: domain.Gateway("boom")}, mapNames{})
	_, err = a.History(context.Background(), alice)
	assert.Equal(t, "boom", domain.Message(err))
}

func TestHistoryStatusWhileLoading(t *testing.T) {
	src := &fakeHistory{gate: make(chan struct{})}
	a := NewAggregator(src, mapNames{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = a.History(context.Background(), alice)
	}()
	require.Eventually(t, func() bool { return a.Status(alice) == StateLoading }, time.Second, 5*time.Millisecond)
	close(src.gate)
	wg.Wait()
	assert.Equal(t, StateEmpty, a.Status(alice))
}

type countingProfiles struct {
	calls atomic.Int32
}

func (c *countingProfiles) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	c.calls.Add(1)
	if id == "bob" {
		return &domain.Profile{ID: "bob", Username: "Bob"}, nil
	}
	return nil, domain.NotFound("profile not found")
}

func TestCachedNames(t *testing.T) {
	rdb, mr := testutil.OpenRedis(t)
	src := &countingProfiles{}
	n := NewCachedNames(src, rdb, time.Minute)
	ctx := context.Background()

	name, err := n.Name(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	name, err = n.Name(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	assert.EqualValues(t, 1, src.calls.Load(), "second lookup is served from cache")
	assert.True(t, mr.Exists("profile:name:bob"))

	_, err = n.Name(ctx, "ghost")
	assert.Error(t, err)
}

func TestExportWritesWorkbook(t *testing.T) {
	src := &fakeHistory{sent: []domain.Transaction{
		{ID: 1, Type: domain.TxPayBills, Amount: decimal.RequireFromString("12.50"), Description: "Pay Bills of PHP 12.50", CreatedAt: time.Now()},
	}}
	a := NewAggregator(src, mapNames{})
	var buf bytes.Buffer
	require.NoError(t, a.Export(context.Background(), alice, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	head, err := f.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", head)
	desc, err := f.GetCellValue(exportSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "Pay Bills of PHP 12.50", desc)
	amount, err := f.GetCellValue(exportSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "12.5", amount)
	kind, err := f.GetCellValue(exportSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, string(domain.TxPayBills), kind)
	assert.Equal(t, []string{exportSheet}, f.GetSheetList())
	width, err := f.GetColWidth(exportSheet, "F")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
}
