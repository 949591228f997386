// Package inventory manages stock items and barcode stock-outs.
package inventory

import (
	"context" // Deadlines
	"strings" // Input trimming
	"time"    // Receive dates

	"campus_wallet/internal/domain"  // Importing domain models
	"campus_wallet/internal/metrics" // Stock-out counters

	"github.com/sirupsen/logrus" // Logging library
)

// LatestCount is how many recent products the summary shows
const LatestCount = 3

// Store is the part of the data gateway inventory uses
type Store interface {
	Products(ctx context.Context) ([]domain.Product, error)
	LatestProducts(ctx context.Context, n int) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	ProductBySerial(ctx context.Context, serial string) (*domain.Product, error)
	RecordStockOut(ctx context.Context, serial string) (*domain.Product, error)
}

// Summary is the dashboard view of the stock
type Summary struct {
	TotalItems int              `json:"total_items"` // Distinct products
	TotalUnits int              `json:"total_units"` // Sum of quantities
	LowStock   int              `json:"low_stock"`   // Products at or below the threshold
	Latest     []domain.Product `json:"latest"`      // Most recently added
}

// Service implements the inventory operations
type Service struct {
	store Store
}

// NewService creates an inventory Service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns every product, newest receive date first
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products(ctx)
}

// Product looks up the item a scanned barcode refers to
func (s *Service) Product(ctx context.Context, serial string) (*domain.Product, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, domain.Validation("serial number is required")
	}
	return s.store.ProductBySerial(ctx, serial)
}

// Create validates and stores a new product
func (s *Service) Create(ctx context.Context, p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.SerialNumber = strings.TrimSpace(p.SerialNumber)
	switch {
	case p.Name == "":
		return domain.Validation("product name is required")
	case p.SerialNumber == "":
		return domain.Validation("serial number is required")
	case p.Quantity < 0:
		return domain.Validation("quantity cannot be negative")
	case p.Price.IsNegative():
		return domain.Validation("price cannot be negative")
	}
	if p.ReceiveOn.IsZero() {
		p.ReceiveOn = time.Now()
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return domain.Conflict("serial number already exists")
		}
		return err
	}
	logrus.WithFields(logrus.Fields{
		"product_id": p.ID,
		"serial":     p.SerialNumber,
		"quantity":   p.Quantity,
	}).Info("Product created")
	return nil
}

// StockOut takes one unit of the scanned serial out of stock
func (s *Service) StockOut(ctx context.Context, serial string) (*domain.Product, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		metrics.StockOuts.WithLabelValues("invalid").Inc()
		return nil, domain.Validation("serial number is required")
	}
	p, err := s.store.RecordStockOut(ctx, serial)
	if err != nil {
		metrics.StockOuts.WithLabelValues(stockOutStatus(err)).Inc()
		logrus.WithFields(logrus.Fields{
			"serial": serial,
			"error":  err.Error(),
		}).Warn("Stock out failed")
		return nil, err
	}
	metrics.StockOuts.WithLabelValues("ok").Inc()
	logrus.WithFields(logrus.Fields{
		"product_id": p.ID,
		"serial":     serial,
		"remaining":  p.Quantity,
	}).Info("Stock out recorded")
	return p, nil
}

func stockOutStatus(err error) string {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return "not_found"
	case domain.KindBusinessRule:
		return "out_of_stock"
	default:
		return "error"
	}
}

// Summary totals the stock and lists the latest additions
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	all, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestProducts(ctx, LatestCount)
	if err != nil {
		return nil, err
	}
	sum := &Summary{TotalItems: len(all), Latest: latest}
	for _, p := range all {
		sum.TotalUnits += p.Quantity
		if p.Quantity <= domain.LowStockThreshold {
			sum.LowStock++
		}
	}
	return sum, nil
}
