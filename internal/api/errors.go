package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"campus_wallet/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps an error kind to its HTTP status
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindBusinessRule:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// respondError writes err as {"error": message, "kind": family}
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindGateway {
		// Log backend failures with request context
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error("Gateway failure")
	}
	c.JSON(statusOf(kind), gin.H{"error": domain.Message(err), "kind": kind.String()})
}

// paging reads page and page_size from the query string
func paging(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}

// totalPages rounds up total / pageSize
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}
