package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// LowStockThreshold is the quantity at or below which a product counts as low stock
const LowStockThreshold = 3

// Product Model, an inventory item
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Brand        string          `gorm:"size:100" json:"brand"`
	Model        string          `gorm:"size:100" json:"model"`
	Category     string          `gorm:"size:50;index" json:"category"`
	SerialNumber string          `gorm:"size:100;uniqueIndex;not null" json:"serial_number"` // Barcode payload
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	ImageURL     string          `gorm:"size:512" json:"image_url,omitempty"`
	ReceiveOn    time.Time       `gorm:"index" json:"receive_on"` // Date the stock arrived
	CreatedAt    time.Time       `json:"created_at"`
}

// StockOut Model, one scanned movement out of stock
type StockOut struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"index;not null" json:"product_id"`
	SerialNumber string    `gorm:"size:100;not null" json:"serial_number"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps the scanner's table name
func (StockOut) TableName() string {
	return "stock_out"
}
