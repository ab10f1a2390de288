//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"diplomsklad/internal/config"
	"diplomsklad/internal/infra"
	"diplomsklad/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const (
	e2eAdminSecret = "e2e-admin-secret"
	e2eTokenKey    = "e2e-token-key"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type idBody struct {
	ID uint `json:"id"`
}

type itemBody struct {
	Status string `json:"status"`
	Item   struct {
		ID              uint  `json:"id"`
		Quantity        int   `json:"quantity"`
		LocationID      *uint `json:"location_id"`
		LastOperationID *uint `json:"last_operation_id"`
	} `json:"item"`
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("warehouse_test"),
		tcPostgres.WithUsername("warehouse"),
		tcPostgres.WithPassword("warehouse"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                  8000,
		Env:                   "test",
		WorkerPoolSize:        1,
		RequestTimeoutSeconds: 15,
		CORSAllowedOrigins:    "*",
		RateLimitPerMinute:    10000,
		DatabaseURL:           pgURL,
		DBMaxOpenConns:        20,
		DBMaxIdleConns:        5,
		RedisURL:              rdURL,
		AdminSecret:           e2eAdminSecret,
		AdminTokenSecret:      e2eTokenKey,
		AdminTokenTTLMinutes:  5,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	srv := httptest.NewServer(router.New(cfg, db, rdb, cb))
	t.Cleanup(srv.Close)
	return srv
}

func registerWorker(t *testing.T, srv *httptest.Server, externalID int64) uint {
	t.Helper()
	resp := do(t, srv, "POST", "/api/register",
		jsonBody(t, map[string]any{"external_id": externalID, "role": "worker"}), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var u idBody
	decodeJSON(t, resp, &u)
	return u.ID
}

func createLocation(t *testing.T, srv *httptest.Server, code string) uint {
	t.Helper()
	resp := do(t, srv, "POST", "/api/locations",
		jsonBody(t, map[string]any{"name": "Shelf " + code, "code": code}), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Location idBody `json:"location"`
	}
	decodeJSON(t, resp, &body)
	return body.Location.ID
}

func scan(t *testing.T, srv *httptest.Server, barcode string) itemBody {
	t.Helper()
	resp := do(t, srv, "POST", "/api/items/scan", jsonBody(t, map[string]string{"barcode": barcode}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body itemBody
	decodeJSON(t, resp, &body)
	return body
}

func operation(t *testing.T, srv *httptest.Server, userID, itemID, locID uint, kind string, qty int) *http.Response {
	t.Helper()
	return do(t, srv, "POST", "/api/operations", jsonBody(t, map[string]any{
		"user_id": userID, "item_id": itemID, "location_id": locID, "type": kind, "quantity": qty,
	}), "")
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_WarehouseFlow(t *testing.T) {
	srv := setupServer(t)

	health := do(t, srv, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, health.StatusCode)
	var hb struct {
		DB      string `json:"db"`
		Redis   string `json:"redis"`
		Breaker string `json:"accounting_breaker"`
	}
	decodeJSON(t, health, &hb)
	assert.Equal(t, "connected", hb.DB)
	assert.Equal(t, "connected", hb.Redis)
	assert.Equal(t, "closed", hb.Breaker)

	userID := registerWorker(t, srv, 1001)

	dup := do(t, srv, "POST", "/api/register", jsonBody(t, map[string]any{"external_id": 1001}), "")
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	dup.Body.Close()

	badAdmin := do(t, srv, "POST", "/api/register", jsonBody(t, map[string]any{
		"external_id": 2002, "role": "admin", "admin_secret": "wrong",
	}), "")
	assert.Equal(t, http.StatusForbidden, badAdmin.StatusCode)
	badAdmin.Body.Close()

	locA := createLocation(t, srv, "A-01")
	dupLoc := do(t, srv, "POST", "/api/locations", jsonBody(t, map[string]any{"name": "again", "code": "A-01"}), "")
	assert.Equal(t, http.StatusConflict, dupLoc.StatusCode)
	dupLoc.Body.Close()

	first := scan(t, srv, "4600000000017")
	assert.Equal(t, "created", first.Status)
	assert.Equal(t, 0, first.Item.Quantity)
	itemID := first.Item.ID
	assert.Equal(t, "exists", scan(t, srv, "4600000000017").Status)

	// a rejected create rolls back the owner registered on first sight
	resp := do(t, srv, "POST", "/api/items", jsonBody(t, map[string]any{
		"barcode": "4600000000017", "name": "Dup", "owner_external_id": 5151,
	}), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	resp = do(t, srv, "GET", "/api/users/5151", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// receive 5, ship 3, ship 10 rejected
	resp = operation(t, srv, userID, itemID, locA, "receive", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		OperationID uint `json:"operation_id"`
	}
	decodeJSON(t, resp, &created)

	resp = operation(t, srv, userID, itemID, locA, "ship", 3)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &created)

	resp = operation(t, srv, userID, itemID, locA, "ship", 10)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	after := scan(t, srv, "4600000000017")
	assert.Equal(t, 2, after.Item.Quantity)
	require.NotNil(t, after.Item.LastOperationID)
	assert.Equal(t, created.OperationID, *after.Item.LastOperationID)

	// move changes only the location, inventory sets the count
	locB := createLocation(t, srv, "B-02")
	resp = operation(t, srv, userID, itemID, locB, "move", 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = operation(t, srv, userID, itemID, locB, "inventory", 7)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	after = scan(t, srv, "4600000000017")
	assert.Equal(t, 7, after.Item.Quantity)
	require.NotNil(t, after.Item.LocationID)
	assert.Equal(t, locB, *after.Item.LocationID)

	// referenced locations cannot be deleted, free ones can
	resp = do(t, srv, "DELETE", fmt.Sprintf("/api/locations/%d", locA), nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	locC := createLocation(t, srv, "C-03")
	resp = do(t, srv, "DELETE", fmt.Sprintf("/api/locations/%d", locC), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// sync without an endpoint is logged as delivered
	resp = do(t, srv, "POST", "/api/sync", jsonBody(t, map[string]any{"entity_type": "item", "entity_id": itemID}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var synced struct {
		Status string `json:"status"`
	}
	decodeJSON(t, resp, &synced)
	assert.Equal(t, "synced", synced.Status)

	// admin surface
	resp = do(t, srv, "GET", "/api/admin/operations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, "POST", "/api/check-admin-secret", jsonBody(t, map[string]string{"secret": e2eAdminSecret}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tok struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &tok)
	require.NotEmpty(t, tok.Token)

	resp = do(t, srv, "GET", fmt.Sprintf("/api/admin/operations?item_id=%d", itemID), nil, tok.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ops struct {
		Total int64 `json:"total"`
		Data  []struct {
			Type         string `json:"type"`
			LocationCode string `json:"location_code"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &ops)
	assert.EqualValues(t, 4, ops.Total)
	require.Len(t, ops.Data, 4)
	assert.Equal(t, "inventory", ops.Data[0].Type)
	assert.Equal(t, "B-02", ops.Data[0].LocationCode)

	resp = do(t, srv, "GET", "/api/admin/items/export", nil, tok.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	resp.Body.Close()

	resp = do(t, srv, "GET", fmt.Sprintf("/api/admin/items/%d/label", itemID), nil, tok.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = do(t, srv, "GET", "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// Concurrent ships against the same item never take stock below zero.
func TestE2E_ConcurrentShipsNeverOversell(t *testing.T) {
	srv := setupServer(t)

	userID := registerWorker(t, srv, 3003)
	locID := createLocation(t, srv, "R-01")
	itemID := scan(t, srv, "4600000000024").Item.ID

	resp := operation(t, srv, userID, itemID, locID, "receive", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	const attempts = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := operation(t, srv, userID, itemID, locID, "ship", 1)
			r.Body.Close()
			mu.Lock()
			defer mu.Unlock()
			switch r.StatusCode {
			case http.StatusCreated:
				accepted++
			case http.StatusBadRequest:
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, accepted)
	assert.Equal(t, attempts-5, rejected)
	assert.Equal(t, 0, scan(t, srv, "4600000000024").Item.Quantity)
}
