// Package metrics holds the process-wide Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"          // Metric types
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered metrics
)

var (
	// TransactionsRecorded counts ledger rows accepted per purpose
	TransactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transactions_recorded_total",
			Help: "Total number of transactions recorded",
		},
		[]string{"type"},
	)

	// TransactionsRejected counts submissions refused per error kind
	TransactionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transactions_rejected_total",
			Help: "Total number of transaction submissions rejected",
		},
		[]string{"kind"},
	)

	// StockOuts counts barcode scans by outcome
	StockOuts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_out_total",
			Help: "Total number of stock-out scans",
		},
		[]string{"status"},
	)
)
