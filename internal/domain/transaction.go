package domain

import (
	"fmt"  // Message formatting
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact money arithmetic
	"gorm.io/gorm"                  // GORM hooks
)

// TxType enumerates the supported transaction purposes
type TxType string

const (
	TxCashIn    TxType = "Cash In"
	TxSendMoney TxType = "Send Money"
	TxPayBills  TxType = "Pay Bills"
	TxPayFee    TxType = "Pay Fee"
)

// TxTypes lists every purpose in display order
var TxTypes = []TxType{TxCashIn, TxSendMoney, TxPayBills, TxPayFee}

// ParseTxType matches a purpose label exactly
func ParseTxType(s string) (TxType, bool) {
	for _, t := range TxTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsDebit reports whether the purpose takes money out of the owner's wallet
func (t TxType) IsDebit() bool {
	return t == TxSendMoney || t == TxPayBills || t == TxPayFee
}

// ImpliesRecipient reports whether the purpose moves money to another wallet
func (t TxType) ImpliesRecipient() bool {
	return t == TxSendMoney
}

// Transaction Model, an append-only ledger entry
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                        // Primary key
	WalletID    string          `gorm:"size:36;index;not null" json:"wallet_id"`     // Owner/sender wallet
	Type        TxType          `gorm:"size:20;not null" json:"type"`                // Purpose
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`   // Always positive
	RecipientID *string         `gorm:"size:36;index" json:"recipient_id,omitempty"` // Receiving wallet for Send Money
	Description string          `gorm:"size:255" json:"description"`                 // Free text
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                     // Creation timestamp
}

// BeforeCreate rejects rows the settlement hook cannot settle
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if _, ok := ParseTxType(string(t.Type)); !ok {
		return ErrMissingPurpose
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// AfterCreate settles balances inside the insert's database transaction.
// Any error rolls the ledger row back with it.
func (t *Transaction) AfterCreate(tx *gorm.DB) error {
	switch t.Type {
	case TxCashIn:
		return credit(tx, t.WalletID, t.Amount)
	case TxPayBills, TxPayFee:
		return debit(tx, t.WalletID, t.Amount)
	case TxSendMoney:
		if t.RecipientID == nil || *t.RecipientID == "" {
			return ErrMissingRecipient
		}
		if *t.RecipientID == t.WalletID {
			return ErrSelfTransfer
		}
		if err := debit(tx, t.WalletID, t.Amount); err != nil {
			return err
		}
		if err := credit(tx, *t.RecipientID, t.Amount); err != nil {
			if KindOf(err) == KindNotFound {
				return NotFound("recipient wallet not found")
			}
			return err
		}
		senderName := "another user"
		var sender Profile
		if err := tx.Select("username").Where("id = ?", t.WalletID).Take(&sender).Error; err == nil {
			senderName = sender.Username
		}
		currency := DefaultCurrency
		var from Wallet
		if err := tx.Select("currency").Where("wallet_id = ?", t.WalletID).Take(&from).Error; err == nil && from.Currency != "" {
			currency = from.Currency
		}
		n := Notification{
			WalletID:  *t.RecipientID,
			SenderID:  &t.WalletID,
			Amount:    t.Amount,
			Message:   fmt.Sprintf("You received %s %s from %s.", currency, t.Amount.StringFixed(2), senderName),
			CreatedAt: t.CreatedAt,
		}
		return tx.Create(&n).Error
	}
	return nil
}

// BeforeUpdate keeps the ledger append-only
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrAppendOnly
}

// BeforeDelete keeps the ledger append-only
func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return ErrAppendOnly
}

// credit adds amount to a wallet
func credit(tx *gorm.DB, walletID string, amount decimal.Decimal) error {
	res := tx.Model(&Wallet{}).Where("wallet_id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// debit subtracts amount only while the balance covers it
func debit(tx *gorm.DB, walletID string, amount decimal.Decimal) error {
	res := tx.Model(&Wallet{}).Where("wallet_id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := tx.Model(&Wallet{}).Where("wallet_id = ?", walletID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrWalletNotFound
	}
	return ErrInsufficientFunds
}
