package httpserver_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/bicitaller/internal/adapters/cache"
	"github.com/phenrril/bicitaller/internal/adapters/feed"
	"github.com/phenrril/bicitaller/internal/adapters/httpserver"
	"github.com/phenrril/bicitaller/internal/adapters/repo/postgres"
	"github.com/phenrril/bicitaller/internal/adapters/storage/localfs"
	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

const secret = "test-secret"

type harness struct {
	t       *testing.T
	handler http.Handler
	tenant  uuid.UUID
	admin   string
	mech    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clientRepo := postgres.NewClientRepo(db)
	itemRepo := postgres.NewInventoryRepo(db)
	serviceRepo := postgres.NewServiceRepo(db)
	mechRepo := postgres.NewMechanicRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	commRepo := postgres.NewCommissionRepo(db)
	bus := feed.NewBus()
	notify := &usecase.Notifier{Feed: bus, Cache: cache.NewLists()}

	h := httpserver.New(httpserver.Deps{
		Clients:   &usecase.ClientUC{Clients: clientRepo, Notify: notify},
		Inventory: &usecase.InventoryUC{Items: itemRepo, Notify: notify},
		Services:  &usecase.ServiceUC{Services: serviceRepo, Items: itemRepo, Notify: notify},
		Mechanics: &usecase.MechanicUC{Mechanics: mechRepo, Notify: notify},
		Orders: &usecase.OrderUC{Orders: orderRepo, Clients: clientRepo, Mechanics: mechRepo, Services: serviceRepo,
			Items: itemRepo, Notify: notify},
		Commissions: &usecase.CommissionUC{Commissions: commRepo, Notify: notify},
		Finance:     &usecase.FinanceUC{Orders: orderRepo, Commissions: commRepo, Mechanics: mechRepo, Location: time.UTC},
		Storage:     localfs.New(t.TempDir()),
		Feed:        bus,
		JWTSecret:   secret,
	})
	hs := &harness{t: t, handler: h, tenant: uuid.New()}
	hs.admin = hs.token(domain.RoleAdmin)
	hs.mech = hs.token(domain.RoleMechanic)
	return hs
}

func (h *harness) token(role domain.Role) string {
	h.t.Helper()
	claims := httpserver.Claims{
		UserID:   uuid.New().String(),
		TenantID: h.tenant.String(),
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		h.t.Fatalf("sign: %v", err)
	}
	return tok
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

// must hace el request como admin, exige el código y decodifica la respuesta en out.
func (h *harness) must(method, path string, body any, code int, out any) {
	h.t.Helper()
	rr := h.do(method, path, h.admin, body)
	if rr.Code != code {
		h.t.Fatalf("%s %s: expected %d got %d body=%s", method, path, code, rr.Code, rr.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s: decode: %v body=%s", method, path, err, rr.Body.String())
		}
	}
}

func TestHealthzIsPublic(t *testing.T) {
	h := newHarness(t)
	rr := h.do(http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	h := newHarness(t)
	if rr := h.do(http.MethodGet, "/api/clients", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
	bad, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, httpserver.Claims{TenantID: h.tenant.String(), Role: "admin"}).SignedString([]byte("otro"))
	if rr := h.do(http.MethodGet, "/api/clients", bad, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature got %d", rr.Code)
	}
	noTenant, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, httpserver.Claims{Role: "admin"}).SignedString([]byte(secret))
	if rr := h.do(http.MethodGet, "/api/clients", noTenant, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant got %d", rr.Code)
	}
}

func TestWorkOrderFlow(t *testing.T) {
	h := newHarness(t)

	var client domain.Client
	h.must(http.MethodPost, "/api/clients", map[string]any{"name": "Ana García"}, http.StatusCreated, &client)
	var bike domain.Bike
	h.must(http.MethodPost, "/api/clients/"+client.ID.String()+"/bikes", map[string]any{"brand": "Trek", "model": "Marlin 7", "type": "mtb"}, http.StatusCreated, &bike)
	var mech domain.Mechanic
	h.must(http.MethodPost, "/api/mechanics", map[string]any{"name": "Juan Pérez"}, http.StatusCreated, &mech)
	var cable domain.InventoryItem
	h.must(http.MethodPost, "/api/inventory", map[string]any{"name": "Brake Cable", "kind": "part", "sale_price": "2000"}, http.StatusCreated, &cable)
	var svc domain.ServiceEntry
	h.must(http.MethodPost, "/api/services", map[string]any{
		"name": "Full Tune-Up", "base_price": "30000", "commission_fraction": "0.5",
		"recipe": []map[string]any{{"item_id": cable.ID, "suggested_quantity": "2"}},
	}, http.StatusCreated, &svc)

	var order domain.WorkOrder
	h.must(http.MethodPost, "/api/orders", map[string]any{"client_id": client.ID, "bike_id": bike.ID, "mechanic_id": mech.ID}, http.StatusCreated, &order)
	if order.ProcessStatus != domain.StatusOpen {
		t.Fatalf("expected open order got %s", order.ProcessStatus)
	}

	var added struct {
		Lines []domain.OrderLine `json:"lines"`
		Total decimal.Decimal    `json:"total"`
	}
	h.must(http.MethodPost, "/api/orders/"+order.ID.String()+"/services", map[string]any{"service_id": svc.ID}, http.StatusCreated, &added)
	if len(added.Lines) != 2 || !added.Total.Equal(decimal.NewFromInt(34000)) {
		t.Fatalf("unexpected composition: %d lines total %s", len(added.Lines), added.Total)
	}

	for _, to := range []string{"in_progress", "ready", "delivered", "paid"} {
		h.must(http.MethodPost, "/api/orders/"+order.ID.String()+"/transition", map[string]any{"to": to}, http.StatusOK, &order)
	}
	if order.ProcessStatus != domain.StatusPaid {
		t.Fatalf("expected paid got %s", order.ProcessStatus)
	}
	rr := h.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/transition", h.admin, map[string]any{"to": "cancelled"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("paid -> cancelled: expected 409 got %d", rr.Code)
	}

	var comms []domain.Commission
	h.must(http.MethodGet, "/api/commissions?status=pending", nil, http.StatusOK, &comms)
	if len(comms) != 1 || !comms[0].Amount.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("unexpected commissions: %+v", comms)
	}

	var ledger domain.Ledger
	h.must(http.MethodGet, "/api/finance/ledger?period=today", nil, http.StatusOK, &ledger)
	if !ledger.NetMargin.Equal(decimal.NewFromInt(19000)) {
		t.Fatalf("expected net 19000 got %s", ledger.NetMargin)
	}
	rr = h.do(http.MethodGet, "/api/finance/ledger?period=today&format=csv", h.admin, nil)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if n := strings.Count(strings.TrimSpace(rr.Body.String()), "\n"); n != 3 {
		t.Fatalf("expected header + 3 rows, got %d newlines", n)
	}
	rr = h.do(http.MethodGet, "/api/finance/ledger.xlsx?period=week", h.admin, nil)
	if rr.Code != http.StatusOK || rr.Body.Len() == 0 {
		t.Fatalf("xlsx: %d", rr.Code)
	}
	var archived map[string]string
	h.must(http.MethodPost, "/api/finance/archive?period=month", nil, http.StatusCreated, &archived)
	if !strings.HasPrefix(archived["location"], h.tenant.String()+"/month/caja_") {
		t.Fatalf("unexpected archive location %q", archived["location"])
	}

	var settled map[string]int64
	h.must(http.MethodPost, "/api/commissions/settle", map[string]any{"ids": []uuid.UUID{comms[0].ID}}, http.StatusOK, &settled)
	if settled["settled"] != 1 {
		t.Fatalf("expected 1 settled got %d", settled["settled"])
	}
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)

	var cable domain.InventoryItem
	h.must(http.MethodPost, "/api/inventory", map[string]any{"name": "Brake Cable", "kind": "part", "sale_price": "2000"}, http.StatusCreated, &cable)
	h.must(http.MethodPost, "/api/services", map[string]any{
		"name": "Full Tune-Up", "base_price": "30000", "commission_fraction": "0.5",
		"recipe": []map[string]any{{"item_id": cable.ID, "suggested_quantity": "2"}},
	}, http.StatusCreated, nil)

	var conflict map[string]any
	h.must(http.MethodDelete, "/api/inventory/"+cable.ID.String(), nil, http.StatusConflict, &conflict)
	if conflict["relation"] != domain.RelRecipes {
		t.Fatalf("expected recipe relation, got %v", conflict)
	}

	if rr := h.do(http.MethodDelete, "/api/inventory/"+cable.ID.String(), h.mech, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("mechanic delete: expected 403 got %d", rr.Code)
	}
	if rr := h.do(http.MethodGet, "/api/finance/ledger", h.mech, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("mechanic ledger: expected 403 got %d", rr.Code)
	}
	h.must(http.MethodGet, "/api/clients/"+uuid.New().String(), nil, http.StatusNotFound, nil)
	h.must(http.MethodGet, "/api/clients/no-es-uuid", nil, http.StatusBadRequest, nil)
	h.must(http.MethodPost, "/api/clients", map[string]any{"name": " "}, http.StatusBadRequest, nil)
	h.must(http.MethodGet, "/api/finance/ledger?period=year", nil, http.StatusBadRequest, nil)
	h.must(http.MethodPatch, "/api/clients", nil, http.StatusMethodNotAllowed, nil)

	var low []domain.InventoryItem
	h.must(http.MethodGet, "/api/inventory/low-stock", nil, http.StatusOK, &low)
	if len(low) != 1 {
		t.Fatalf("zero stock item should be low: %d", len(low))
	}
	var adjusted domain.InventoryItem
	h.must(http.MethodPost, "/api/inventory/"+cable.ID.String()+"/stock", map[string]any{"delta": "5"}, http.StatusOK, &adjusted)
	if !adjusted.Stock.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected stock 5 got %s", adjusted.Stock)
	}
}

func TestChangesStream(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/changes?tables=clients&token="+h.admin, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected stream response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	r := bufio.NewReader(resp.Body)
	if line, _ := r.ReadString('\n'); !strings.HasPrefix(line, ": ok") {
		t.Fatalf("expected greeting got %q", line)
	}

	h.must(http.MethodPost, "/api/clients", map[string]any{"name": "Ana García"}, http.StatusCreated, nil)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			var c domain.Change
			if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &c); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if c.Table != domain.TableClients || c.TenantID != h.tenant {
				t.Fatalf("unexpected change %+v", c)
			}
			return
		}
	}
}
