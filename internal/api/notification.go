package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parsing
	"time"     // Feed clock

	"campus_wallet/internal/domain"       // Error taxonomy
	"campus_wallet/internal/middleware"   // Identity from context
	"campus_wallet/internal/notification" // Feed derivation

	"github.com/gin-gonic/gin" // Gin web framework
)

// NotificationFeedHandler returns budget reminders and money-received items, unread first
func NotificationFeedHandler(deriver *notification.Deriver) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := deriver.Feed(c.Request.Context(), middleware.Identity(c), time.Now())
		if err != nil {
			respondError(c, err)
			return
		}
		unread := 0
		for _, it := range items {
			if !it.Read {
				unread++
			}
		}
		c.JSON(http.StatusOK, gin.H{"notifications": items, "unread": unread})
	}
}

// MarkNotificationReadHandler marks /notifications/:source/:id as read
func MarkNotificationReadHandler(deriver *notification.Deriver) gin.HandlerFunc {
	return func(c *gin.Context) {
		source, ok := notification.ParseSource(c.Param("source"))
		if !ok {
			respondError(c, domain.Validation("unknown notification source"))
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			respondError(c, domain.Validation("invalid notification id"))
			return
		}
		item := &notification.Item{Source: source, ID: uint(id)}
		if err := deriver.MarkRead(c.Request.Context(), middleware.Identity(c), item); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"source": item.Source, "id": item.ID, "read": item.Read})
	}
}
