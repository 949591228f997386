package wallet

import (
	"context" // Deadlines
	"fmt"     // Description formatting
	"strings" // Name matching

	"campus_wallet/internal/domain"  // Importing domain models
	"campus_wallet/internal/metrics" // Transaction counters
	"campus_wallet/internal/utils"   // Amount parsing

	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

// recipientSearchLimit caps the candidates offered for one query
const recipientSearchLimit = 20

// Ledger is the part of the data gateway the recorder writes through
type Ledger interface {
	WalletSource
	Profile(ctx context.Context, id string) (*domain.Profile, error)
	SearchProfiles(ctx context.Context, fragment string, limit int) ([]domain.Profile, error)
	InsertTransaction(ctx context.Context, t *domain.Transaction) error
}

// Form is the transient state of one transaction being entered
type Form struct {
	Purpose        string          `json:"purpose"`         // One of the TxType labels
	Amount         string          `json:"amount"`          // Raw amount text
	RecipientQuery string          `json:"recipient_query"` // Username fragment for Send Money
	Recipient      *domain.Profile `json:"-"`               // Resolved recipient, if any
	Description    string          `json:"description"`     // Overrides the generated description
}

// Reset clears the form after a successful submission
func (f *Form) Reset() {
	f.Purpose = ""
	f.Amount = ""
	f.RecipientQuery = ""
	f.Recipient = nil
	f.Description = ""
}

// Receipt is the outcome of an accepted submission
type Receipt struct {
	Transaction domain.Transaction `json:"transaction"`         // The stored ledger row
	Wallet      *domain.Wallet     `json:"wallet"`              // Balance re-read after settlement
	Recipient   *domain.Profile    `json:"recipient,omitempty"` // Counterparty for Send Money
}

// Recorder validates and submits transactions for the caller's wallet
type Recorder struct {
	ledger   Ledger
	balances *BalanceReader
	currency string
}

// NewRecorder creates a Recorder; currency labels generated descriptions
func NewRecorder(ledger Ledger, currency string) *Recorder {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &Recorder{ledger: ledger, balances: NewBalanceReader(ledger), currency: currency}
}

// Balances exposes the reader used for sufficiency checks
func (r *Recorder) Balances() *BalanceReader {
	return r.balances
}

// ResolveRecipient searches usernames for fragment. The chosen profile is the
// single exact case-insensitive match when there is one, otherwise the first
// match in result order. All candidates are returned for disambiguation.
func (r *Recorder) ResolveRecipient(ctx context.Context, id domain.Identity, fragment string) (*domain.Profile, []domain.Profile, error) {
	if !id.Valid() {
		return nil, nil, domain.ErrUnauthenticated
	}
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil, domain.ErrMissingRecipient
	}
	matches, err := r.ledger.SearchProfiles(ctx, fragment, recipientSearchLimit)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, domain.ErrNoSuchUser
	}
	chosen := -1
	for i := range matches {
		if strings.EqualFold(matches[i].Username, fragment) {
			if chosen >= 0 {
				chosen = -1 // Ambiguous exact match, fall back to result order
				break
			}
			chosen = i
		}
	}
	if chosen < 0 {
		chosen = 0
	}
	picked := matches[chosen]
	return &picked, matches, nil
}

// Recipient loads a recipient picked by id
func (r *Recorder) Recipient(ctx context.Context, profileID string) (*domain.Profile, error) {
	p, err := r.ledger.Profile(ctx, profileID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrNoSuchUser
		}
		return nil, err
	}
	return p, nil
}

// Submit validates the form and records one transaction. Validation runs in a
// fixed order and nothing reaches the gateway until the amount has parsed.
// The form is reset only on success.
func (r *Recorder) Submit(ctx context.Context, id domain.Identity, f *Form) (*Receipt, error) {
	rec, err := r.submit(ctx, id, f)
	if err != nil {
		metrics.TransactionsRejected.WithLabelValues(domain.KindOf(err).String()).Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": id.ProfileID, // Sender
			"type":    f.Purpose,    // Requested purpose
			"amount":  f.Amount,     // Raw amount
			"error":   err.Error(),  // Error message
		}).Warn("Transaction rejected")
		return nil, err
	}
	metrics.TransactionsRecorded.WithLabelValues(string(rec.Transaction.Type)).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":        id.ProfileID,                    // Sender
		"transaction_id": rec.Transaction.ID,              // Ledger row
		"type":           rec.Transaction.Type,            // Purpose
		"amount":         rec.Transaction.Amount.String(), // Amount
	}).Info("Transaction recorded")
	f.Reset()
	return rec, nil
}

func (r *Recorder) submit(ctx context.Context, id domain.Identity, f *Form) (*Receipt, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	// 1. Purpose
	purpose, ok := domain.ParseTxType(f.Purpose)
	if !ok {
		return nil, domain.ErrMissingPurpose
	}
	// 2. Amount
	amount, err := utils.ParseAmount(f.Amount)
	if err != nil {
		return nil, domain.ErrInvalidAmount
	}
	// 3. Recipient
	recipient := f.Recipient
	if purpose.ImpliesRecipient() {
		if recipient == nil && strings.TrimSpace(f.RecipientQuery) != "" {
			recipient, _, err = r.ResolveRecipient(ctx, id, f.RecipientQuery)
			if err != nil {
				return nil, err
			}
		}
		if recipient == nil {
			return nil, domain.ErrMissingRecipient
		}
		// 4. Self transfer
		if recipient.ID == id.ProfileID {
			return nil, domain.ErrSelfTransfer
		}
	} else {
		recipient = nil
	}
	// 5. Sufficiency against a fresh balance
	if purpose.IsDebit() {
		w, err := r.balances.Balance(ctx, id)
		if err != nil {
			return nil, err
		}
		if amount.GreaterThan(w.Balance) {
			return nil, domain.ErrInsufficientFunds
		}
	}

	description := strings.TrimSpace(f.Description)
	if description == "" {
		description, err = r.describe(ctx, id, purpose, amount, recipient)
		if err != nil {
			return nil, err
		}
	}
	t := domain.Transaction{
		WalletID:    id.ProfileID,
		Type:        purpose,
		Amount:      amount,
		Description: description,
	}
	if recipient != nil {
		rid := recipient.ID
		t.RecipientID = &rid
	}
	if err := r.ledger.InsertTransaction(ctx, &t); err != nil {
		return nil, err
	}

	rec := &Receipt{Transaction: t, Recipient: recipient}
	w, err := r.balances.Balance(ctx, id)
	if err != nil {
		// The row is settled; only the refresh failed
		logrus.WithFields(logrus.Fields{
			"user_id": id.ProfileID,
			"error":   err.Error(),
		}).Warn("Balance refresh failed")
		return rec, nil
	}
	rec.Wallet = w
	return rec, nil
}

// describe builds the default description of a transaction
func (r *Recorder) describe(ctx context.Context, id domain.Identity, purpose domain.TxType, amount decimal.Decimal, recipient *domain.Profile) (string, error) {
	switch purpose {
	case domain.TxCashIn:
		p, err := r.ledger.Profile(ctx, id.ProfileID)
		if err != nil {
			return "", err
		}
		return "Cash-in transaction for Student ID: " + p.StudentID, nil
	case domain.TxSendMoney:
		return fmt.Sprintf("Sent %s %s to %s", r.currency, amount.StringFixed(2), recipient.Username), nil
	default:
		return fmt.Sprintf("%s of %s %s", purpose, r.currency, amount.StringFixed(2)), nil
	}
}
