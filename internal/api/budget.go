package api

import (
	"context"  // Store calls
	"net/http" // HTTP status codes
	"strings"  // Input trimming
	"time"     // Calendar dates

	"campus_wallet/internal/domain"     // Importing domain models
	"campus_wallet/internal/middleware" // Identity from context
	"campus_wallet/internal/utils"      // Validators

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// BudgetStore reads and writes budgets
type BudgetStore interface {
	Budgets(ctx context.Context, profileID string) ([]domain.Budget, error)
	CreateBudget(ctx context.Context, b *domain.Budget) error
}

// BudgetRequest represents a new planned expense
type BudgetRequest struct {
	Name    string     `json:"name"`     // Budget label
	Amount  amountText `json:"amount"`   // Planned amount
	EndDate string     `json:"end_date"` // Due date, YYYY-MM-DD
}

// ListBudgetsHandler returns the caller's budgets by due date
func ListBudgetsHandler(budgets BudgetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.Identity(c)
		if !id.Valid() {
			respondError(c, domain.ErrUnauthenticated)
			return
		}
		list, err := budgets.Budgets(c.Request.Context(), id.ProfileID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"budgets": list})
	}
}

// CreateBudgetHandler validates and stores a budget
func CreateBudgetHandler(budgets BudgetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.Identity(c)
		if !id.Valid() {
			respondError(c, domain.ErrUnauthenticated)
			return
		}
		var req BudgetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondError(c, domain.Validation("budget name is required"))
			return
		}
		amount, err := utils.ParseAmount(string(req.Amount))
		if err != nil {
			respondError(c, domain.ErrInvalidAmount)
			return
		}
		// Due dates are calendar dates and are stored at UTC midnight
		end, err := utils.ParseDate(req.EndDate, time.UTC)
		if err != nil {
			respondError(c, domain.Validation("end_date must be YYYY-MM-DD"))
			return
		}
		b := &domain.Budget{ProfileID: id.ProfileID, Name: name, Amount: amount, EndDate: end}
		if err := budgets.CreateBudget(c.Request.Context(), b); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   id.ProfileID,             // Owner
			"budget_id": b.ID,                     // New budget
			"amount":    amount.String(),          // Planned amount
			"end_date":  end.Format("2006-01-02"), // Due date
		}).Info("Budget created")
		c.JSON(http.StatusCreated, gin.H{"budget": b})
	}
}
