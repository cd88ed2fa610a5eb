package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceEntry es un servicio del catálogo con su receta de insumos.
type ServiceEntry struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID           uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Name               string          `gorm:"size:180;not null;index" json:"name"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	BasePrice          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_price"`
	CommissionFraction decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"commission_fraction"`
	Recipe             []RecipeLine    `gorm:"foreignKey:ServiceID" json:"recipe,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (ServiceEntry) TableName() string { return "service_catalog" }

type RecipeLine struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ServiceID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"service_id"`
	ItemID            uuid.UUID       `gorm:"type:uuid;index;not null" json:"item_id"`
	SuggestedQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"suggested_quantity"`
}

func (s *ServiceEntry) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("name", "requerido")
	}
	if s.BasePrice.IsNegative() {
		return Invalid("base_price", "no puede ser negativo")
	}
	if s.CommissionFraction.IsNegative() || s.CommissionFraction.GreaterThan(decimal.NewFromInt(1)) {
		return Invalid("commission_fraction", "debe estar entre 0 y 1")
	}
	return ValidateRecipe(s.Recipe)
}

func ValidateRecipe(lines []RecipeLine) error {
	for _, rl := range lines {
		if rl.ItemID == uuid.Nil {
			return Invalid("recipe.item_id", "requerido")
		}
		if !rl.SuggestedQuantity.IsPositive() {
			return Invalid("recipe.suggested_quantity", "debe ser mayor a 0")
		}
	}
	return nil
}

// Commission devuelve la comisión del mecánico sobre el precio base.
func (s *ServiceEntry) Commission() decimal.Decimal {
	return s.BasePrice.Mul(s.CommissionFraction).Round(2)
}
