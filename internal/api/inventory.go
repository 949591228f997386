package api

import (
	"net/http" // HTTP status codes
	"time"     // Receive dates

	"campus_wallet/internal/domain"    // Importing domain models
	"campus_wallet/internal/inventory" // Inventory operations
	"campus_wallet/internal/utils"     // Validators

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Prices
)

// ProductRequest represents a new inventory item
type ProductRequest struct {
	Name         string     `json:"name"`
	Brand        string     `json:"brand"`
	Model        string     `json:"model"`
	Category     string     `json:"category"`
	SerialNumber string     `json:"serial_number"`
	Quantity     int        `json:"quantity"`
	Price        amountText `json:"price"`
	ImageURL     string     `json:"image_url"`
	ReceiveOn    string     `json:"receive_on"` // YYYY-MM-DD, defaults to now
}

// StockOutRequest carries a scanned barcode
type StockOutRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"` // Barcode payload
}

// ListProductsHandler returns every product
func ListProductsHandler(items *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := items.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": list})
	}
}

// GetProductHandler returns the product behind /inventory/products/:serial
func GetProductHandler(items *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := items.Product(c.Request.Context(), c.Param("serial"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": p})
	}
}

// CreateProductHandler validates and stores a product
func CreateProductHandler(items *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		price := decimal.Zero
		if req.Price != "" {
			p, err := utils.ParseMoney(string(req.Price))
			if err != nil {
				respondError(c, domain.Validation("invalid price"))
				return
			}
			price = p
		}
		p := &domain.Product{
			Name:         req.Name,
			Brand:        req.Brand,
			Model:        req.Model,
			Category:     req.Category,
			SerialNumber: req.SerialNumber,
			Quantity:     req.Quantity,
			Price:        price,
			ImageURL:     req.ImageURL,
		}
		if req.ReceiveOn != "" {
			d, err := utils.ParseDate(req.ReceiveOn, time.UTC)
			if err != nil {
				respondError(c, domain.Validation("receive_on must be YYYY-MM-DD"))
				return
			}
			p.ReceiveOn = d
		}
		if err := items.Create(c.Request.Context(), p); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": p})
	}
}

// InventorySummaryHandler returns totals, low stock count and latest items
func InventorySummaryHandler(items *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := items.Summary(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// StockOutHandler records one scanned unit leaving stock
func StockOutHandler(items *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StockOutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		p, err := items.StockOut(c.Request.Context(), req.SerialNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Stock out recorded", "product": p})
	}
}
