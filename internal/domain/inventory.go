package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	ItemConsumable ItemKind = "consumable"
	ItemPart       ItemKind = "part"
)

type Unit string

const (
	UnitUnits       Unit = "units"
	UnitGrams       Unit = "grams"
	UnitMilliliters Unit = "milliliters"
	UnitMeters      Unit = "meters"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitUnits, UnitGrams, UnitMilliliters, UnitMeters:
		return true
	}
	return false
}

// InventoryItem es un insumo o repuesto. SalePrice es el valor APU que se
// copia a las líneas de orden.
type InventoryItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Name      string          `gorm:"size:180;not null;index" json:"name"`
	SKU       string          `gorm:"size:120;index" json:"sku,omitempty"`
	Kind      ItemKind        `gorm:"type:varchar(20);not null" json:"kind"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
	Stock     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`
	MinStock  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"min_stock"`
	Unit      Unit            `gorm:"type:varchar(20);not null;default:'units'" json:"unit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (it *InventoryItem) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return Invalid("name", "requerido")
	}
	if it.Kind != ItemConsumable && it.Kind != ItemPart {
		return Invalid("kind", "debe ser consumable o part")
	}
	if it.Unit == "" {
		it.Unit = UnitUnits
	}
	if !it.Unit.Valid() {
		return Invalid("unit", "unidad de medida inválida")
	}
	if it.UnitCost.IsNegative() || it.SalePrice.IsNegative() {
		return Invalid("price", "no puede ser negativo")
	}
	if it.MinStock.IsNegative() {
		return Invalid("min_stock", "no puede ser negativo")
	}
	return nil
}

func (it *InventoryItem) LowStock() bool {
	return it.Stock.LessThanOrEqual(it.MinStock)
}
