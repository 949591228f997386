package api

import (
	"bytes"         // Amount field decoding
	"encoding/json" // Amount field decoding
	"fmt"           // Export file name
	"net/http"      // HTTP status codes
	"time"          // Timestamps

	"campus_wallet/internal/domain"     // Importing domain models
	"campus_wallet/internal/middleware" // Identity from context
	"campus_wallet/internal/realtime"   // Websocket hub
	"campus_wallet/internal/utils"      // Cache helpers
	"campus_wallet/internal/wallet"     // Wallet services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/gorilla/websocket" // Websocket upgrades
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// amountText accepts an amount sent either as a JSON string or a JSON number
type amountText string

// UnmarshalJSON keeps the literal text so parsing happens in one place
func (a *amountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	*a = amountText(b)
	return nil
}

// TransactionRequest represents a transaction submission
type TransactionRequest struct {
	Purpose        string     `json:"purpose"`         // Cash In, Send Money, Pay Bills or Pay Fee
	Amount         amountText `json:"amount"`          // Decimal amount
	RecipientID    string     `json:"recipient_id"`    // Picked recipient, optional
	RecipientQuery string     `json:"recipient_query"` // Username search, optional
	Description    string     `json:"description"`     // Optional description
}

// GetWalletHandler returns the caller's wallet, always read fresh
func GetWalletHandler(balances *wallet.BalanceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := balances.Balance(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w})
	}
}

// SearchRecipientsHandler resolves a username fragment to candidate recipients
func SearchRecipientsHandler(recorder *wallet.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		picked, candidates, err := recorder.ResolveRecipient(c.Request.Context(), middleware.Identity(c), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipient": picked, "candidates": candidates})
	}
}

// CreateTransactionHandler validates and records one transaction, then pushes
// realtime events to both sides of a transfer
func CreateTransactionHandler(recorder *wallet.Recorder, hub *realtime.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		id := middleware.Identity(c)
		form := &wallet.Form{
			Purpose:        req.Purpose,
			Amount:         string(req.Amount),
			RecipientQuery: req.RecipientQuery,
			Description:    req.Description,
		}
		if req.RecipientID != "" {
			p, err := recorder.Recipient(ctx, req.RecipientID)
			if err != nil {
				respondError(c, err)
				return
			}
			form.Recipient = p
		}
		rec, err := recorder.Submit(ctx, id, form)
		if err != nil {
			respondError(c, err)
			return
		}
		// Invalidate admin listings, balances and the ledger changed
		_ = utils.DeletePrefix(ctx, rdb, utils.AdminCachePrefix)
		if rec.Wallet != nil {
			hub.Publish(id.ProfileID, realtime.Event{Type: realtime.EventBalanceUpdate, Data: rec.Wallet})
		}
		if rec.Recipient != nil {
			hub.Publish(rec.Recipient.ID, realtime.Event{
				Type: realtime.EventMoneyReceived,
				Data: gin.H{
					"transaction_id": rec.Transaction.ID,                    // Ledger row
					"from":           id.ProfileID,                          // Sender wallet
					"amount":         rec.Transaction.Amount.StringFixed(2), // Amount received
				},
			})
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Transaction successful", "receipt": rec})
	}
}

// TransactionHistoryHandler returns the merged sent and received history
func TransactionHistoryHandler(history *wallet.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := history.History(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h)
	}
}

// HistoryStatusHandler reports whether the caller's history is loading
func HistoryStatusHandler(history *wallet.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"state": history.Status(middleware.Identity(c))})
	}
}

// ExportHistoryHandler streams the history as an XLSX download
func ExportHistoryHandler(history *wallet.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := history.Export(c.Request.Context(), middleware.Identity(c), &buf); err != nil {
			respondError(c, err)
			return
		}
		name := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WalletWSHandler keeps a websocket open for balance and money-received events
func WalletWSHandler(hub *realtime.Hub, balances *wallet.BalanceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.Identity(c)
		if !id.Valid() {
			respondError(c, domain.ErrUnauthenticated)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("WebSocket upgrade failed")
			return
		}
		hub.Register(id.ProfileID, conn)
		defer hub.Unregister(id.ProfileID, conn)

		// Send the current balance first
		if w, err := balances.Balance(c.Request.Context(), id); err == nil {
			hub.Publish(id.ProfileID, realtime.Event{Type: realtime.EventBalanceUpdate, Data: w})
		}
		for {
			// Reads only detect disconnects
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
