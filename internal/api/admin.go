package api

import (
	"context"  // Store calls
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"campus_wallet/internal/domain"  // Importing domain models
	"campus_wallet/internal/gateway" // Ledger filters
	"campus_wallet/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// AdminStore is the reporting side of the data gateway
type AdminStore interface {
	ListProfiles(ctx context.Context, offset, limit int) ([]domain.Profile, int64, error)
	ListTransactions(ctx context.Context, f gateway.TxFilter, offset, limit int) ([]domain.Transaction, int64, error)
}

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        string         `json:"id"`         // Profile ID
	Username  string         `json:"username"`   // Username
	StudentID string         `json:"student_id"` // Student ID
	Email     string         `json:"email"`      // Login email
	Role      string         `json:"role"`       // User role
	Wallet    *domain.Wallet `json:"wallet"`     // Associated wallet
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(store AdminStore, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := paging(c) // Pagination parameters
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminCachePrefix + "users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		// Fetch paginated profiles with wallet info
		profiles, total, err := store.ListProfiles(ctx, (page-1)*pageSize, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		// Map profiles to response format
		resp := make([]UserAdminResponse, len(profiles))
		for i, p := range profiles {
			resp[i] = UserAdminResponse{
				ID:        p.ID,        // Profile ID
				Username:  p.Username,  // Username
				StudentID: p.StudentID, // Student ID
				Email:     p.Email,     // Login email
				Role:      p.Role,      // User role
				Wallet:    p.Wallet,    // Associated wallet
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,                        // List of users
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of users
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, ttl)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by user, type, or date
func ListTransactionsHandler(store AdminStore, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		cacheKey := utils.AdminCachePrefix + "txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total number of transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize := paging(c)
		filter := gateway.TxFilter{WalletID: c.Query("user_id"), Type: c.Query("type")}
		if from := c.Query("from"); from != "" {
			d, err := utils.ParseDate(from, time.UTC)
			if err != nil {
				respondError(c, domain.Validation("from must be YYYY-MM-DD"))
				return
			}
			filter.From = &d // Inclusive start of day
		}
		if to := c.Query("to"); to != "" {
			d, err := utils.ParseDate(to, time.UTC)
			if err != nil {
				respondError(c, domain.Validation("to must be YYYY-MM-DD"))
				return
			}
			end := d.AddDate(0, 0, 1).Add(-time.Nanosecond) // Inclusive end of day
			filter.To = &end
		}
		txs, total, err := store.ListTransactions(ctx, filter, (page-1)*pageSize, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		respData := gin.H{
			"transactions": txs,                         // List of transactions
			"page":         page,                        // Current page
			"page_size":    pageSize,                    // Page size
			"total":        total,                       // Total number of transactions
			"total_pages":  totalPages(total, pageSize), // Total pages
			"cached":       false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, ttl)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
