package domain

import "github.com/shopspring/decimal" // Exact money arithmetic

// DefaultCurrency is used when a wallet is opened without one
const DefaultCurrency = "PHP"

// Wallet Model
type Wallet struct {
	WalletID string          `gorm:"primaryKey;size:36" json:"wallet_id"`                  // Primary key, equal to the profile id
	Balance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Never negative
	Currency string          `gorm:"size:3;not null;default:PHP" json:"currency"`          // ISO currency code
}
