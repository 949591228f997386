package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_wallet/internal/account"
	"campus_wallet/internal/domain"
	"campus_wallet/internal/gateway"
	"campus_wallet/internal/inventory"
	"campus_wallet/internal/notification"
	"campus_wallet/internal/realtime"
	"campus_wallet/internal/testutil"
	"campus_wallet/internal/utils"
	"campus_wallet/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	r    *gin.Engine
	conn *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	conn := testutil.OpenDB(t)
	rdb, _ := testutil.OpenRedis(t)
	store := gateway.New(conn, 5*time.Second)
	avatars, err := gateway.NewAvatarStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	recorder := wallet.NewRecorder(store, domain.DefaultCurrency)
	r := gin.New()
	Routes(r, Deps{
		Store:   store,
		Avatars: avatars,
		Redis:   rdb,
		Accounts: account.NewService(store, avatars, rdb, account.Options{
			JWTSecret: testSecret,
			JWTTTL:    time.Hour,
			ResetTTL:  time.Minute,
			Currency:  domain.DefaultCurrency,
		}),
		Recorder:  recorder,
		History:   wallet.NewAggregator(store, wallet.NewCachedNames(store, rdb, time.Minute)),
		Deriver:   notification.NewDeriver(store, time.UTC),
		Inventory: inventory.NewService(store),
		Hub:       realtime.NewHub(),
		JWTSecret: testSecret,
		CacheTTL:  time.Minute,
	})
	return &server{r: r, conn: conn}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, profileID, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(profileID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/user", "", gin.H{
		"username":         "alice",
		"student_id":       "2024-001",
		"phone":            "09171234567",
		"email":            "Alice@Campus.test",
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/user/login", "", gin.H{"email": "alice@campus.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var auth AuthResponse
	decode(t, w, &auth)
	require.NotEmpty(t, auth.Token)

	w = s.do(t, http.MethodGet, "/profile", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Profile domain.Profile `json:"profile"`
	}
	decode(t, w, &got)
	assert.Equal(t, "alice", got.Profile.Username)

	w = s.do(t, http.MethodGet, "/wallet", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wal struct {
		Wallet domain.Wallet `json:"wallet"`
	}
	decode(t, w, &wal)
	assert.True(t, wal.Wallet.Balance.IsZero())
	assert.Equal(t, "PHP", wal.Wallet.Currency)
}

func TestUpdateProfileIgnoresAvatarURL(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	tok := tokenFor(t, "u1", "user")

	w := s.do(t, http.MethodPut, "/profile", tok, gin.H{
		"username":   "alice r",
		"student_id": "S-u1",
		"phone":      "09-u1",
		"avatar_url": "https://elsewhere.test/x.png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p domain.Profile
	require.NoError(t, s.conn.First(&p, "id = ?", "u1").Error)
	assert.Equal(t, "alice r", p.Username)
	assert.Empty(t, p.AvatarURL)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/user/login", "", gin.H{"email": "nobody@campus.test", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "AuthenticationError", body["kind"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/wallet", "/profile", "/budgets", "/notifications", "/inventory/products"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(t, http.MethodGet, "/wallet", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	tok := tokenFor(t, "u1", "user")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/wallet", tok, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/user/session", tok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/wallet", tok, nil).Code)

	// A fresh token still works
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/wallet", tokenFor(t, "u1", "user"), nil).Code)
}

func TestCreateTransaction(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 100)
	testutil.SeedAccount(t, s.conn, "u2", "bob", 0)
	tok := tokenFor(t, "u1", "user")

	w := s.do(t, http.MethodPost, "/wallet/transactions", tok, gin.H{
		"purpose":      "Send Money",
		"amount":       "40",
		"recipient_id": "u2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Receipt wallet.Receipt `json:"receipt"`
	}
	decode(t, w, &created)
	require.NotNil(t, created.Receipt.Wallet)
	assert.True(t, created.Receipt.Wallet.Balance.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "Sent PHP 40.00 to bob", created.Receipt.Transaction.Description)

	// Numeric amounts are accepted too
	w = s.do(t, http.MethodPost, "/wallet/transactions", tok, gin.H{"purpose": "Pay Bills", "amount": 10.5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bob domain.Wallet
	require.NoError(t, s.conn.First(&bob, "wallet_id = ?", "u2").Error)
	assert.True(t, bob.Balance.Equal(decimal.NewFromInt(40)))
}

func TestCreateTransactionRejected(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 10)
	testutil.SeedAccount(t, s.conn, "u2", "bob", 0)
	tok := tokenFor(t, "u1", "user")

	cases := []struct {
		name   string
		body   gin.H
		status int
		kind   string
	}{
		{"insufficient", gin.H{"purpose": "Pay Fee", "amount": "500"}, http.StatusUnprocessableEntity, "BusinessRuleError"},
		{"no purpose", gin.H{"amount": "5"}, http.StatusBadRequest, "ValidationError"},
		{"bad amount", gin.H{"purpose": "Cash In", "amount": "-3"}, http.StatusBadRequest, "ValidationError"},
		{"huge exponent", gin.H{"purpose": "Cash In", "amount": json.RawMessage("1e1000000000")}, http.StatusBadRequest, "ValidationError"},
		{"too many digits", gin.H{"purpose": "Cash In", "amount": json.RawMessage("100000000000000000000")}, http.StatusBadRequest, "ValidationError"},
		{"self", gin.H{"purpose": "Send Money", "amount": "5", "recipient_id": "u1"}, http.StatusUnprocessableEntity, "BusinessRuleError"},
		{"unknown recipient", gin.H{"purpose": "Send Money", "amount": "5", "recipient_query": "zed"}, http.StatusNotFound, "NotFoundError"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/wallet/transactions", tok, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, tc.kind, body["kind"])
		})
	}

	var count int64
	require.NoError(t, s.conn.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	admin := testutil.SeedAccount(t, s.conn, "a1", "root", 0)
	require.NoError(t, s.conn.Model(&admin).Update("role", "admin").Error)

	w := s.do(t, http.MethodGet, "/admin/users", tokenFor(t, "u1", "user"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/admin/users", tokenFor(t, "a1", "admin"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var users struct {
		Users  []UserAdminResponse `json:"users"`
		Total  int64               `json:"total"`
		Cached bool                `json:"cached"`
	}
	decode(t, w, &users)
	assert.EqualValues(t, 2, users.Total)
	assert.False(t, users.Cached)

	w = s.do(t, http.MethodGet, "/admin/users", tokenFor(t, "a1", "admin"), nil)
	decode(t, w, &users)
	assert.True(t, users.Cached)

	w = s.do(t, http.MethodGet, "/admin/transactions?from=nope", tokenFor(t, "a1", "admin"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationFeedAndMarkRead(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 100)
	testutil.SeedAccount(t, s.conn, "u2", "bob", 0)

	w := s.do(t, http.MethodPost, "/wallet/transactions", tokenFor(t, "u1", "user"), gin.H{
		"purpose": "Send Money", "amount": "25", "recipient_query": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	bob := tokenFor(t, "u2", "user")
	w = s.do(t, http.MethodGet, "/notifications", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Notifications []notification.Item `json:"notifications"`
		Unread        int                 `json:"unread"`
	}
	decode(t, w, &feed)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, 1, feed.Unread)
	assert.Equal(t, notification.TitleMoneyReceived, feed.Notifications[0].Title)

	path := "/notifications/money/" + jsonNumber(feed.Notifications[0].ID) + "/read"
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path, bob, nil).Code)

	w = s.do(t, http.MethodGet, "/notifications", bob, nil)
	decode(t, w, &feed)
	assert.Zero(t, feed.Unread)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/notifications/pigeon/1/read", bob, nil).Code)
}

func TestBudgets(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	tok := tokenFor(t, "u1", "user")

	due := time.Now().UTC().AddDate(0, 0, 2).Format(utils.DateLayout)
	w := s.do(t, http.MethodPost, "/budgets", tok, gin.H{"name": "Books", "amount": "300", "end_date": due})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/budgets", tok, gin.H{"name": "Books", "amount": "300", "end_date": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/budgets", tok, gin.H{"name": "Books", "amount": json.RawMessage("1e1000000000"), "end_date": due})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/notifications", tok, nil)
	var feed struct {
		Notifications []notification.Item `json:"notifications"`
	}
	decode(t, w, &feed)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, notification.TitleBudgetDue, feed.Notifications[0].Title)
}

func TestInventoryStockOut(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	tok := tokenFor(t, "u1", "user")

	w := s.do(t, http.MethodPost, "/inventory/products", tok, gin.H{
		"name": "Mouse", "serial_number": "SN-1", "quantity": 1, "price": "250",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/inventory/products", tok, gin.H{"name": "Mouse", "serial_number": "SN-1", "quantity": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/inventory/products/SN-1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var found struct {
		Product domain.Product `json:"product"`
	}
	decode(t, w, &found)
	assert.Equal(t, "Mouse", found.Product.Name)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/inventory/products/SN-9", tok, nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/inventory/stock-out", tok, gin.H{"serial_number": "SN-1"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/inventory/stock-out", tok, gin.H{"serial_number": "SN-1"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/inventory/stock-out", tok, gin.H{"serial_number": "SN-9"}).Code)

	w = s.do(t, http.MethodGet, "/inventory/summary", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sum inventory.Summary
	decode(t, w, &sum)
	assert.Equal(t, 1, sum.TotalItems)
	assert.Equal(t, 0, sum.TotalUnits)
}

func TestExportHistory(t *testing.T) {
	s := newServer(t)
	testutil.SeedAccount(t, s.conn, "u1", "alice", 0)
	tok := tokenFor(t, "u1", "user")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/wallet/transactions", tok, gin.H{"purpose": "Cash In", "amount": "50"}).Code)

	w := s.do(t, http.MethodGet, "/wallet/transactions/export", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
