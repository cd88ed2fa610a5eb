package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/bicitaller/internal/adapters/cache"
	"github.com/phenrril/bicitaller/internal/adapters/feed"
	"github.com/phenrril/bicitaller/internal/adapters/repo/postgres"
	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	// _foreign_keys=1 hace que sqlite respete las FK igual que postgres.
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// workshop arma un taller completo sobre sqlite con un reloj controlable.
type workshop struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	now   time.Time
	bus   *feed.Bus
	cache *cache.Lists

	admin    domain.Session
	mechanic domain.Session

	clients     *usecase.ClientUC
	items       *usecase.InventoryUC
	services    *usecase.ServiceUC
	mechanics   *usecase.MechanicUC
	orders      *usecase.OrderUC
	commissions *usecase.CommissionUC
	finance     *usecase.FinanceUC
}

func newWorkshop(t *testing.T) *workshop {
	t.Helper()
	db := setupDB(t)
	w := &workshop{
		t:     t,
		ctx:   context.Background(),
		db:    db,
		now:   time.Date(2026, 10, 17, 13, 0, 0, 0, time.UTC),
		bus:   feed.NewBus(),
		cache: cache.NewLists(),
	}
	tenant := uuid.New()
	w.admin = domain.Session{TenantID: tenant, UserID: uuid.New(), Role: domain.RoleAdmin}
	w.mechanic = domain.Session{TenantID: tenant, UserID: uuid.New(), Role: domain.RoleMechanic}

	clock := func() time.Time { return w.now }
	notify := &usecase.Notifier{Feed: w.bus, Cache: w.cache}
	clientRepo := postgres.NewClientRepo(db)
	itemRepo := postgres.NewInventoryRepo(db)
	serviceRepo := postgres.NewServiceRepo(db)
	mechRepo := postgres.NewMechanicRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	commRepo := postgres.NewCommissionRepo(db)

	w.clients = &usecase.ClientUC{Clients: clientRepo, Notify: notify, Now: clock}
	w.items = &usecase.InventoryUC{Items: itemRepo, Notify: notify, Now: clock}
	w.services = &usecase.ServiceUC{Services: serviceRepo, Items: itemRepo, Notify: notify, Now: clock}
	w.mechanics = &usecase.MechanicUC{Mechanics: mechRepo, Notify: notify, Now: clock}
	w.orders = &usecase.OrderUC{
		Orders: orderRepo, Clients: clientRepo, Mechanics: mechRepo, Services: serviceRepo, Items: itemRepo,
		Policy: usecase.RecipeLenient, Notify: notify, Now: clock,
	}
	w.commissions = &usecase.CommissionUC{Commissions: commRepo, Notify: notify, Now: clock}
	w.finance = &usecase.FinanceUC{Orders: orderRepo, Commissions: commRepo, Mechanics: mechRepo, Location: time.UTC}
	return w
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (w *workshop) tick(d time.Duration) { w.now = w.now.Add(d) }

func (w *workshop) client(name string) (*domain.Client, *domain.Bike) {
	w.t.Helper()
	c := &domain.Client{Name: name}
	if err := w.clients.Create(w.ctx, w.admin, c); err != nil {
		w.t.Fatalf("client: %v", err)
	}
	b := &domain.Bike{ClientID: c.ID, Brand: "Trek", Model: "Marlin 7", Type: domain.BikeMTB}
	if err := w.clients.CreateBike(w.ctx, w.admin, b); err != nil {
		w.t.Fatalf("bike: %v", err)
	}
	return c, b
}

func (w *workshop) mech(name string) *domain.Mechanic {
	w.t.Helper()
	m := &domain.Mechanic{Name: name}
	if err := w.mechanics.Create(w.ctx, w.admin, m); err != nil {
		w.t.Fatalf("mechanic: %v", err)
	}
	return m
}

func (w *workshop) item(name, price string) *domain.InventoryItem {
	w.t.Helper()
	it := &domain.InventoryItem{Name: name, Kind: domain.ItemPart, SalePrice: dec(price), UnitCost: dec("1"), Stock: dec("10")}
	if err := w.items.Create(w.ctx, w.admin, it); err != nil {
		w.t.Fatalf("item: %v", err)
	}
	return it
}

func (w *workshop) service(name, price, fraction string, recipe ...domain.RecipeLine) *domain.ServiceEntry {
	w.t.Helper()
	svc := &domain.ServiceEntry{Name: name, BasePrice: dec(price), CommissionFraction: dec(fraction), Recipe: recipe}
	if err := w.services.Create(w.ctx, w.admin, svc); err != nil {
		w.t.Fatalf("service: %v", err)
	}
	return svc
}

func (w *workshop) order(c *domain.Client, b *domain.Bike, m *domain.Mechanic) *domain.WorkOrder {
	w.t.Helper()
	o, err := w.orders.Create(w.ctx, w.admin, usecase.NewOrder{ClientID: c.ID, BikeID: b.ID, MechanicID: m.ID})
	if err != nil {
		w.t.Fatalf("order: %v", err)
	}
	return o
}

// advance lleva la orden por los estados indicados.
func (w *workshop) advance(id uuid.UUID, states ...domain.ProcessStatus) *domain.WorkOrder {
	w.t.Helper()
	var o *domain.WorkOrder
	for _, s := range states {
		var err error
		if o, err = w.orders.Transition(w.ctx, w.admin, id, s); err != nil {
			w.t.Fatalf("transition to %s: %v", s, err)
		}
	}
	return o
}
