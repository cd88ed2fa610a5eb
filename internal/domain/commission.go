package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Commission se genera sólo al registrar el pago de la orden. OrderLineID es
// único: una línea nunca genera dos comisiones.
type Commission struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"tenant_id"`
	MechanicID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"mechanic_id"`
	OrderID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"order_id"`
	OrderLineID uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"order_line_id"`
	Amount      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount"`
	ComputedAt  time.Time        `gorm:"index;not null" json:"computed_at"`
	Status      CommissionStatus `gorm:"type:varchar(10);index;not null" json:"status"`
	PaidAt      *time.Time       `json:"paid_at,omitempty"`
}

type CommissionFilter struct {
	MechanicID uuid.UUID
	Status     CommissionStatus
	From       time.Time
	To         time.Time
}
