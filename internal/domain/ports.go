package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tablas observables por el feed de cambios.
const (
	TableClients     = "clients"
	TableBikes       = "bikes"
	TableInventory   = "inventory_items"
	TableServices    = "service_catalog"
	TableRecipes     = "recipe_lines"
	TableMechanics   = "mechanics"
	TableOrders      = "work_orders"
	TableOrderLines  = "order_lines"
	TableCommissions = "commissions"
)

// Relaciones que bloquean un borrado.
const (
	RelBikes      = "bikes"
	RelWorkOrders = "work_orders"
	RelOrderLines = "order_lines"
	RelRecipes    = "recipe_lines"
)

// Reference describe filas de Table cuya Column apunta a la entidad. Kind
// restringe order_lines a un tipo de línea.
type Reference struct {
	Relation string
	Table    string
	Column   string
	Kind     LineKind
}

type RefCounter interface {
	CountReferences(ctx context.Context, tenantID uuid.UUID, ref Reference, id uuid.UUID) (int64, error)
}

type ClientRepo interface {
	RefCounter
	Save(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]Client, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	SaveBike(ctx context.Context, b *Bike) error
	FindBike(ctx context.Context, tenantID, id uuid.UUID) (*Bike, error)
	ListBikes(ctx context.Context, tenantID, clientID uuid.UUID) ([]Bike, error)
	DeleteBike(ctx context.Context, tenantID, id uuid.UUID) error
}

type InventoryRepo interface {
	RefCounter
	Save(ctx context.Context, it *InventoryItem) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InventoryItem, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]InventoryItem, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)
	AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type ServiceRepo interface {
	RefCounter
	Save(ctx context.Context, s *ServiceEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ServiceEntry, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]ServiceEntry, error)
	// ReplaceRecipe borra la receta completa y la vuelve a insertar.
	ReplaceRecipe(ctx context.Context, tenantID, serviceID uuid.UUID, lines []RecipeLine) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type MechanicRepo interface {
	Save(ctx context.Context, m *Mechanic) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Mechanic, error)
	List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]Mechanic, error)
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error
}

type OrderRepo interface {
	Create(ctx context.Context, o *WorkOrder) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*WorkOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, f OrderFilter) ([]WorkOrder, int64, error)
	// AppendLines inserta las líneas y suma su total al de la orden en una
	// transacción; devuelve el total resultante.
	AppendLines(ctx context.Context, tenantID, orderID uuid.UUID, lines []OrderLine) (decimal.Decimal, error)
	// UpdateStatus sólo escribe si la orden sigue en from; si no, ErrConflict.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to ProcessStatus) error
	// MarkPaid pasa delivered -> paid e inserta, en la misma transacción, las
	// comisiones de las líneas que tiene la orden en ese momento.
	MarkPaid(ctx context.Context, tenantID, id uuid.UUID, paidAt time.Time) ([]Commission, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListPaidInRange(ctx context.Context, tenantID uuid.UUID, basis IncomeBasis, from, to time.Time) ([]WorkOrder, error)
}

type CommissionRepo interface {
	List(ctx context.Context, tenantID uuid.UUID, f CommissionFilter) ([]Commission, error)
	Settle(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, paidAt time.Time) (int64, error)
}

// Change es la señal opaca "algo cambió en Table" para un tenant.
type Change struct {
	Table    string    `json:"table"`
	TenantID uuid.UUID `json:"tenant_id"`
}

type ChangeFeed interface {
	Publish(ctx context.Context, c Change) error
	// Subscribe entrega cambios hasta que ctx se cancela; después cierra el canal.
	Subscribe(ctx context.Context, tables ...string) (<-chan Change, error)
}

// ListCache guarda el último listado por tabla y tenant.
type ListCache interface {
	Get(table string, tenantID uuid.UUID) (any, bool)
	// Generation cambia con cada Invalidate de (table, tenantID).
	Generation(table string, tenantID uuid.UUID) uint64
	// Put descarta v si hubo un Invalidate después de leer gen.
	Put(table string, tenantID uuid.UUID, gen uint64, v any) bool
	Invalidate(table string, tenantID uuid.UUID)
}

type FileStorage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}
