package payments

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/gateway"
)

func newPaymentsApp() *fiber.App {
	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tenant-1")
		return c.Next()
	})
	app.Post("/api/payments/intent", func(c *fiber.Ctx) error {
		return CreatePaymentIntentAPI(c, nil, razorpay)
	})
	app.Post("/api/payments/verify", func(c *fiber.Ctx) error {
		return VerifyPaymentAPI(c, nil, razorpay, nil)
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	app := newPaymentsApp()

	assert.Equal(t, 400, postJSON(t, app, "/api/payments/intent", `{`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/intent", `{}`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/intent",
		`{"leaseId":"l1","month":8,"year":2026}`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/intent",
		`{"month":8,"year":2026,"idempotencyKey":"k1"}`))
}

func TestVerifyPaymentValidation(t *testing.T) {
	app := newPaymentsApp()

	assert.Equal(t, 400, postJSON(t, app, "/api/payments/verify", `{`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/verify", `{}`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/verify", `{"paymentId":"p1"}`))
	assert.Equal(t, 400, postJSON(t, app, "/api/payments/verify", `{"gateway":"razorpay"}`))
}

var paymentCols = []string{
	"id", "lease_id", "tenant_id", "owner_id", "property_id", "room_id",
	"month", "year", "period_key", "base_amount", "late_fee_amount",
	"total_amount", "currency", "status", "method", "gateway",
	"transaction_id", "razorpay_order_id", "razorpay_key_id",
	"due_date", "paid_at", "created_at", "updated_at",
}

func paymentRow(orderID interface{}, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(paymentCols).AddRow(
		"lease-1_2026_08", "lease-1", "tenant-1", "owner-1", "property-1", nil,
		8, 2026, "2026-08", total-49.35, 49.35,
		total, "INR", "pending", "unknown", "razorpay",
		"idem-1", orderID, nil,
		now, nil, now, now,
	)
}

func leaseRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "owner_id", "property_id", "rent_amount", "currency",
		"late_fee_percentage", "rent_due_day", "due_date", "status", "created_at", "updated_at",
	}).AddRow("lease-1", "tenant-1", "owner-1", "property-1", 950.0, "INR",
		5.2, 5, now.Add(24*time.Hour), "active", now, now)
}

func replayApp(db *sql.DB, razorpay *gateway.RazorpayClient) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tenant-1")
		return c.Next()
	})
	app.Post("/api/payments/intent", func(c *fiber.Ctx) error {
		return CreatePaymentIntentAPI(c, db, razorpay)
	})
	return app
}

// A retried request whose earlier attempt crashed before the gateway call
// has a ledger entry but no order reference: the replay creates a fresh
// order under the same idempotency key, rounding the fractional total up to
// whole paise.
func TestReplayIntentCreatesMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var gotAmount int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount int64 `json:"amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotAmount = body.Amount
		w.Write([]byte(`{"id":"order_new","amount":99935,"currency":"INR"}`))
	}))
	defer server.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leases WHERE id = $1`)).
		WithArgs("lease-1").WillReturnRows(leaseRow())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(paymentRow(nil, 999.35))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`)).
		WithArgs("idem-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(paymentRow(nil, 999.35))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments`)).
		WithArgs("lease-1_2026_08", "order_new", "rzp_test_key").
		WillReturnResult(sqlmock.NewResult(0, 1))

	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{
		KeyID: "rzp_test_key", KeySecret: "s3cret", BaseURL: server.URL,
	})
	app := replayApp(db, razorpay)

	req := httptest.NewRequest("POST", "/api/payments/intent", bytes.NewReader([]byte(
		`{"leaseId":"lease-1","month":8,"year":2026,"idempotencyKey":"idem-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out IntentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.OrderID)
	assert.Equal(t, "order_new", *out.OrderID)
	assert.Equal(t, "idem-1", out.IdempotencyKey)

	assert.Equal(t, int64(99935), gotAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A retried request whose order already exists is answered from stored state
// without a second gateway call.
func TestReplayIntentReturnsStoredOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gatewayCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalls++
		w.Write([]byte(`{"id":"order_should_not_exist","amount":0,"currency":"INR"}`))
	}))
	defer server.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leases WHERE id = $1`)).
		WithArgs("lease-1").WillReturnRows(leaseRow())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(paymentRow("order_stored", 999.35))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`)).
		WithArgs("idem-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(paymentRow("order_stored", 999.35))

	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{
		KeyID: "rzp_test_key", KeySecret: "s3cret", BaseURL: server.URL,
	})
	app := replayApp(db, razorpay)

	req := httptest.NewRequest("POST", "/api/payments/intent", bytes.NewReader([]byte(
		`{"leaseId":"lease-1","month":8,"year":2026,"idempotencyKey":"idem-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out IntentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.OrderID)
	assert.Equal(t, "order_stored", *out.OrderID)
	assert.Equal(t, 999.35, out.Amount)

	assert.Equal(t, 0, gatewayCalls)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A repeated verify for an already-settled transaction answers {ok:true}
// from the ledger without re-checking the signature or writing anything.
func TestVerifyPaymentReplayIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	settled := sqlmock.NewRows(paymentCols).AddRow(
		"lease-1_2026_08", "lease-1", "tenant-1", "owner-1", "property-1", nil,
		8, 2026, "2026-08", 950.0, 0.0, 950.0, "INR", "paid", "online", "razorpay",
		"idem-1", "order_1", nil, now, now, now, now,
	)
	entry := sqlmock.NewRows([]string{
		"id", "payment_id", "lease_id", "tenant_id", "owner_id",
		"amount", "currency", "gateway", "status", "gateway_payment_id",
		"gateway_order_id", "verification_signature", "completed_at", "created_at",
	}).AddRow("idem-1", "lease-1_2026_08", "lease-1", "tenant-1", "owner-1",
		950.0, "INR", "razorpay", "success", "pay_1", "order_1", "sig", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(settled)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM transactions WHERE id = $1`)).
		WithArgs("idem-1").WillReturnRows(entry)

	// Deliberately unconfigured: the short-circuit must answer before any
	// signature work.
	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tenant-1")
		return c.Next()
	})
	app.Post("/api/payments/verify", func(c *fiber.Ctx) error {
		return VerifyPaymentAPI(c, db, razorpay, nil)
	})

	req := httptest.NewRequest("POST", "/api/payments/verify", bytes.NewReader([]byte(
		`{"paymentId":"lease-1_2026_08","gateway":"razorpay",
		  "payload":{"orderId":"order_1","paymentId":"pay_1","signature":"sig"}}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out["ok"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// Terminal-state immutability at the handler boundary: a settled period is a
// 409 regardless of the idempotency key, with nothing written and no gateway
// call.
func TestCreatePaymentIntentRejectsSettledPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	paid := sqlmock.NewRows(paymentCols).AddRow(
		"lease-1_2026_08", "lease-1", "tenant-1", "owner-1", "property-1", nil,
		8, 2026, "2026-08", 950.0, 0.0, 950.0, "INR", "paid", "online", "razorpay",
		"idem-0", "order_old", nil, time.Now(), time.Now(), time.Now(), time.Now(),
	)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leases WHERE id = $1`)).
		WithArgs("lease-1").WillReturnRows(leaseRow())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs("lease-1_2026_08").WillReturnRows(paid)

	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{KeyID: "k", KeySecret: "s"})
	app := replayApp(db, razorpay)

	req := httptest.NewRequest("POST", "/api/payments/intent", bytes.NewReader([]byte(
		`{"leaseId":"lease-1","month":8,"year":2026,"idempotencyKey":"idem-9"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
