package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
)

// Las recetas se revisan primero: un producto en receta bloquea aunque
// nunca se haya vendido.
var itemRefs = []domain.Reference{
	{Relation: domain.RelRecipes, Table: domain.TableRecipes, Column: "item_id"},
	{Relation: domain.RelOrderLines, Table: domain.TableOrderLines, Column: "source_id", Kind: domain.LineProduct},
}

type InventoryUC struct {
	Items  domain.InventoryRepo
	Notify *Notifier
	Now    func() time.Time
}

type ItemPatch struct {
	Name      *string          `json:"name"`
	SKU       *string          `json:"sku"`
	Kind      *domain.ItemKind `json:"kind"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Stock     *decimal.Decimal `json:"stock"`
	MinStock  *decimal.Decimal `json:"min_stock"`
	Unit      *domain.Unit     `json:"unit"`
}

func (uc *InventoryUC) List(ctx context.Context, s domain.Session) ([]domain.InventoryItem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return cachedList(uc.Notify, domain.TableInventory, s.TenantID, func() ([]domain.InventoryItem, error) {
		return uc.Items.List(ctx, s.TenantID)
	})
}

func (uc *InventoryUC) LowStock(ctx context.Context, s domain.Session) ([]domain.InventoryItem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Items.ListLowStock(ctx, s.TenantID)
}

func (uc *InventoryUC) Get(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.InventoryItem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Items.FindByID(ctx, s.TenantID, id)
}

func (uc *InventoryUC) Create(ctx context.Context, s domain.Session, it *domain.InventoryItem) error {
	if err := s.Validate(); err != nil {
		return err
	}
	it.Name = strings.TrimSpace(it.Name)
	it.SKU = strings.TrimSpace(it.SKU)
	if err := it.Validate(); err != nil {
		return err
	}
	it.ID = uuid.New()
	it.TenantID = s.TenantID
	it.CreatedAt = clock(uc.Now).now()
	if err := uc.Items.Save(ctx, it); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableInventory)
	return nil
}

func (uc *InventoryUC) Update(ctx context.Context, s domain.Session, id uuid.UUID, p ItemPatch) (*domain.InventoryItem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	it, err := uc.Items.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.SKU != nil {
		it.SKU = strings.TrimSpace(*p.SKU)
	}
	if p.Kind != nil {
		it.Kind = *p.Kind
	}
	if p.UnitCost != nil {
		it.UnitCost = *p.UnitCost
	}
	if p.SalePrice != nil {
		it.SalePrice = *p.SalePrice
	}
	if p.Stock != nil {
		it.Stock = *p.Stock
	}
	if p.MinStock != nil {
		it.MinStock = *p.MinStock
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Items.Save(ctx, it); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableInventory)
	return it, nil
}

// AdjustStock suma delta (negativo para descontar) sin leer el valor previo.
func (uc *InventoryUC) AdjustStock(ctx context.Context, s domain.Session, id uuid.UUID, delta decimal.Decimal) (*domain.InventoryItem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, domain.Invalid("delta", "no puede ser 0")
	}
	if err := uc.Items.AdjustStock(ctx, s.TenantID, id, delta); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableInventory)
	return uc.Items.FindByID(ctx, s.TenantID, id)
}

// Delete rechaza productos usados en órdenes o en recetas de servicios.
func (uc *InventoryUC) Delete(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	if err := guardDelete(ctx, uc.Items, s.TenantID, "el producto", id, itemRefs); err != nil {
		return err
	}
	if err := uc.Items.Delete(ctx, s.TenantID, id); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableInventory)
	return nil
}
