// Package testutil provides throwaway stores for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"campus_wallet/internal/db"
	"campus_wallet/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// OpenDB returns a migrated in-memory SQLite database private to the test
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // One writer keeps shared-cache memory databases free of lock errors
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	return conn
}

// OpenRedis starts an in-process redis and returns a client for it
func OpenRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// SeedAccount inserts a profile with a wallet holding balance
func SeedAccount(t *testing.T, conn *gorm.DB, id, username string, balance int64) domain.Profile {
	t.Helper()
	p := domain.Profile{
		ID:           id,
		Username:     username,
		StudentID:    "S-" + id,
		Phone:        "09-" + id,
		Email:        id + "@campus.test",
		PasswordHash: "x",
		Role:         "user",
	}
	require.NoError(t, conn.Create(&p).Error)
	w := domain.Wallet{WalletID: id, Balance: decimal.NewFromInt(balance), Currency: domain.DefaultCurrency}
	require.NoError(t, conn.Create(&w).Error)
	return p
}
