package app

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/adapters/cache"
	"github.com/phenrril/bicitaller/internal/adapters/feed"
	"github.com/phenrril/bicitaller/internal/adapters/httpserver"
	"github.com/phenrril/bicitaller/internal/adapters/repo/postgres"
	"github.com/phenrril/bicitaller/internal/adapters/storage/localfs"
	"github.com/phenrril/bicitaller/internal/adapters/storage/objectstore"
	"github.com/phenrril/bicitaller/internal/config"
	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

var allTables = []string{
	domain.TableClients, domain.TableBikes, domain.TableInventory, domain.TableServices,
	domain.TableRecipes, domain.TableMechanics, domain.TableOrders, domain.TableOrderLines,
	domain.TableCommissions,
}

type App struct {
	DB     *gorm.DB
	Config *config.Config

	ClientUC     *usecase.ClientUC
	InventoryUC  *usecase.InventoryUC
	ServiceUC    *usecase.ServiceUC
	MechanicUC   *usecase.MechanicUC
	OrderUC      *usecase.OrderUC
	CommissionUC *usecase.CommissionUC
	FinanceUC    *usecase.FinanceUC

	Feed    domain.ChangeFeed
	Cache   *cache.Lists
	Storage domain.FileStorage
	Redis   *redis.Client
}

// NewApp arma repos, casos de uso y adaptadores. ctx acota la vida de los
// suscriptores de fondo (invalidación de cache).
func NewApp(ctx context.Context, db *gorm.DB, cfg *config.Config) (*App, error) {
	clientRepo := postgres.NewClientRepo(db)
	itemRepo := postgres.NewInventoryRepo(db)
	serviceRepo := postgres.NewServiceRepo(db)
	mechRepo := postgres.NewMechanicRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	commRepo := postgres.NewCommissionRepo(db)

	a := &App{DB: db, Config: cfg, Cache: cache.NewLists()}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, feed en memoria")
			_ = rdb.Close()
		} else {
			a.Redis = rdb
			a.Feed = feed.NewRedisFeed(rdb)
			if err := a.Cache.Watch(ctx, a.Feed, allTables...); err != nil {
				return nil, err
			}
		}
	}
	if a.Feed == nil {
		a.Feed = feed.NewBus()
	}

	if cfg.MinIO.Endpoint != "" {
		st, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("minio no disponible, reportes en disco")
		} else {
			a.Storage = st
		}
	}
	if a.Storage == nil {
		dir := cfg.StorageDir
		if dir == "" {
			dir = "reportes"
		}
		_ = os.MkdirAll(dir, 0755)
		a.Storage = localfs.New(dir)
	}

	notify := &usecase.Notifier{Feed: a.Feed, Cache: a.Cache}
	a.ClientUC = &usecase.ClientUC{Clients: clientRepo, Notify: notify}
	a.InventoryUC = &usecase.InventoryUC{Items: itemRepo, Notify: notify}
	a.ServiceUC = &usecase.ServiceUC{Services: serviceRepo, Items: itemRepo, Notify: notify}
	a.MechanicUC = &usecase.MechanicUC{Mechanics: mechRepo, Notify: notify}
	a.OrderUC = &usecase.OrderUC{
		Orders:    orderRepo,
		Clients:   clientRepo,
		Mechanics: mechRepo,
		Services:  serviceRepo,
		Items:     itemRepo,
		Policy:    usecase.ParseRecipePolicy(cfg.RecipePolicy),
		Notify:    notify,
	}
	a.CommissionUC = &usecase.CommissionUC{Commissions: commRepo, Notify: notify}
	a.FinanceUC = &usecase.FinanceUC{
		Orders:      orderRepo,
		Commissions: commRepo,
		Mechanics:   mechRepo,
		Basis:       domain.IncomeBasis(strings.ToLower(cfg.IncomeBasis)),
		Location:    cfg.Location(),
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Clients:     a.ClientUC,
		Inventory:   a.InventoryUC,
		Services:    a.ServiceUC,
		Mechanics:   a.MechanicUC,
		Orders:      a.OrderUC,
		Commissions: a.CommissionUC,
		Finance:     a.FinanceUC,
		Storage:     a.Storage,
		Feed:        a.Feed,
		JWTSecret:   a.Config.JWTSecret,
	})
}

func (a *App) Close() error {
	if a.Redis != nil {
		return a.Redis.Close()
	}
	return nil
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := postgres.Migrate(a.DB); err != nil {
		return err
	}

	if a.DB.Dialector.Name() == "postgres" {
		createIndexes(ctx, a.DB, postgresIndexes)
	}

	if !a.Config.SeedDemo {
		return nil
	}
	tenant, err := uuid.Parse(a.Config.SeedTenantID)
	if err != nil {
		log.Warn().Str("seed_tenant_id", a.Config.SeedTenantID).Msg("SEED_DEMO sin tenant válido, se omite")
		return nil
	}
	return seedDemo(ctx, a, domain.Session{TenantID: tenant, Role: domain.RoleSuperAdmin})
}

var postgresIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_work_orders_tenant_status ON work_orders(tenant_id, process_status)",
	"CREATE INDEX IF NOT EXISTS idx_work_orders_tenant_paid_at ON work_orders(tenant_id, paid_at) WHERE paid_at IS NOT NULL",
	"CREATE INDEX IF NOT EXISTS idx_order_lines_order_created ON order_lines(order_id, created_at)",
	"CREATE INDEX IF NOT EXISTS idx_commissions_tenant_computed ON commissions(tenant_id, computed_at)",
	"CREATE INDEX IF NOT EXISTS idx_checklist_gin ON work_orders USING gin (checklist)",
}

// createIndexes no corta el arranque si un índice falla: lo deja en el log y
// sigue. Devuelve cuántos se pudieron crear.
func createIndexes(ctx context.Context, db *gorm.DB, stmts []string) int {
	ok := 0
	for _, stmt := range stmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			log.Warn().Err(err).Str("sql", stmt).Msg("no se pudo crear el índice")
			continue
		}
		ok++
	}
	return ok
}

// seedDemo carga un taller mínimo si el tenant todavía no tiene mecánicos.
func seedDemo(ctx context.Context, a *App, s domain.Session) error {
	existing, err := a.MechanicUC.List(ctx, s, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	mech := &domain.Mechanic{Name: "Mecánico demo", Specialty: "general"}
	if err := a.MechanicUC.Create(ctx, s, mech); err != nil {
		return err
	}
	items := []*domain.InventoryItem{
		{Name: "Cámara 29", Kind: domain.ItemPart, UnitCost: decimal.NewFromInt(3500), SalePrice: decimal.NewFromInt(6000), Stock: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(2)},
		{Name: "Lubricante cadena", Kind: domain.ItemConsumable, Unit: domain.UnitMilliliters, UnitCost: decimal.RequireFromString("12.5"), SalePrice: decimal.NewFromInt(25), Stock: decimal.NewFromInt(1000), MinStock: decimal.NewFromInt(200)},
	}
	for _, it := range items {
		if err := a.InventoryUC.Create(ctx, s, it); err != nil {
			return err
		}
	}
	svc := &domain.ServiceEntry{
		Name:               "Service completo",
		BasePrice:          decimal.NewFromInt(25000),
		CommissionFraction: decimal.RequireFromString("0.3"),
		Recipe: []domain.RecipeLine{
			{ItemID: items[1].ID, SuggestedQuantity: decimal.NewFromInt(30)},
		},
	}
	if err := a.ServiceUC.Create(ctx, s, svc); err != nil {
		return err
	}
	c := &domain.Client{Name: "Cliente demo", Phone: "341-000000"}
	if err := a.ClientUC.Create(ctx, s, c); err != nil {
		return err
	}
	b := &domain.Bike{ClientID: c.ID, Brand: "Venzo", Model: "Raptor", Type: domain.BikeMTB}
	if err := a.ClientUC.CreateBike(ctx, s, b); err != nil {
		return err
	}
	log.Info().Str("tenant", s.TenantID.String()).Msg("datos demo cargados")
	return nil
}
