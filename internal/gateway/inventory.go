package gateway

import (
	"context" // Deadlines

	"campus_wallet/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Products lists inventory by receive date, newest first
func (s *Store) Products(ctx context.Context) ([]domain.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []domain.Product
	if err := db.Order("receive_on desc, id desc").Find(&out).Error; err != nil {
		return nil, translate(err, "product")
	}
	return out, nil
}

// LatestProducts returns the n most recently added products
func (s *Store) LatestProducts(ctx context.Context, n int) ([]domain.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []domain.Product
	if err := db.Order("created_at desc, id desc").Limit(n).Find(&out).Error; err != nil {
		return nil, translate(err, "product")
	}
	return out, nil
}

// CreateProduct inserts an inventory item; serial numbers are unique
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	db, cancel := s.with(ctx)
	defer cancel()
	return translate(db.Create(p).Error, "product")
}

// ProductBySerial fetches the product a barcode refers to
func (s *Store) ProductBySerial(ctx context.Context, serial string) (*domain.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p domain.Product
	if err := db.Where("serial_number = ?", serial).Take(&p).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

// RecordStockOut takes one unit of the scanned product out of stock
func (s *Store) RecordStockOut(ctx context.Context, serial string) (*domain.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p domain.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("serial_number = ?", serial).Take(&p).Error; err != nil {
			return err
		}
		// Guarded decrement so concurrent scans cannot drive quantity negative
		res := tx.Model(&domain.Product{}).Where("id = ? AND quantity >= 1", p.ID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOutOfStock
		}
		out := domain.StockOut{ProductID: p.ID, SerialNumber: serial, Quantity: 1}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", p.ID).Take(&p).Error
	})
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}
