package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProcessStatus string

const (
	StatusOpen       ProcessStatus = "open"
	StatusInProgress ProcessStatus = "in_progress"
	StatusReady      ProcessStatus = "ready"
	StatusDelivered  ProcessStatus = "delivered"
	StatusPaid       ProcessStatus = "paid"
	StatusCancelled  ProcessStatus = "cancelled"
)

var transitions = map[ProcessStatus][]ProcessStatus{
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusReady, StatusCancelled},
	StatusReady:      {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusPaid, StatusCancelled},
	StatusCancelled:  {StatusOpen},
	StatusPaid:       nil,
}

func (s ProcessStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s ProcessStatus) Terminal() bool { return s == StatusPaid }

// CanTransition informa si el ciclo de vida permite pasar de from a to.
func CanTransition(from, to ProcessStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next devuelve los estados alcanzables desde s.
func (s ProcessStatus) Next() []ProcessStatus {
	out := make([]ProcessStatus, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// LegacyStatus es el texto que todavía muestran las pantallas viejas.
func (s ProcessStatus) LegacyStatus() string {
	switch s {
	case StatusOpen:
		return "pendiente"
	case StatusInProgress:
		return "en_proceso"
	case StatusReady:
		return "terminado"
	case StatusDelivered:
		return "entregado"
	case StatusPaid:
		return "pagado"
	case StatusCancelled:
		return "cancelado"
	}
	return string(s)
}

type WorkOrder struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ClientID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"client_id"`
	BikeID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"bike_id"`
	MechanicID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"mechanic_id"`
	Status        string          `gorm:"size:30" json:"status"`
	ProcessStatus ProcessStatus   `gorm:"type:varchar(20);index;not null" json:"process_status"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Checklist     datatypes.JSON  `json:"checklist,omitempty"`
	PaidAt        *time.Time      `gorm:"index" json:"paid_at,omitempty"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (o *WorkOrder) Validate() error {
	if o.ClientID == uuid.Nil {
		return Invalid("client_id", "requerido")
	}
	if o.BikeID == uuid.Nil {
		return Invalid("bike_id", "requerido")
	}
	if o.MechanicID == uuid.Nil {
		return Invalid("mechanic_id", "requerido")
	}
	if len(o.Checklist) > 0 && !json.Valid(o.Checklist) {
		return Invalid("checklist", "JSON inválido")
	}
	return nil
}

// AcceptsLines indica si todavía se pueden agregar líneas a la orden.
func (o *WorkOrder) AcceptsLines() bool {
	return o.ProcessStatus != StatusPaid && o.ProcessStatus != StatusCancelled
}

// CommissionsDue arma una comisión pendiente por cada línea con monto > 0 y
// mecánico asignado.
func (o *WorkOrder) CommissionsDue(now time.Time) []Commission {
	var out []Commission
	for _, l := range o.Lines {
		if l.MechanicID == nil || !l.CommissionAmount.IsPositive() {
			continue
		}
		out = append(out, Commission{
			ID:          uuid.New(),
			TenantID:    o.TenantID,
			MechanicID:  *l.MechanicID,
			OrderID:     o.ID,
			OrderLineID: l.ID,
			Amount:      l.CommissionAmount,
			ComputedAt:  now,
			Status:      CommissionPending,
		})
	}
	return out
}

type LineKind string

const (
	LineService LineKind = "service"
	LineProduct LineKind = "product"
)

// OrderLine guarda una copia del nombre y precio al momento de cargarla;
// renombrar o repreciar el catálogo no la modifica.
type OrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenant_id"`
	OrderID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	Kind             LineKind        `gorm:"type:varchar(10);not null" json:"kind"`
	SourceID         uuid.UUID       `gorm:"type:uuid;index" json:"source_id"`
	Description      string          `gorm:"size:255;not null" json:"description"`
	Quantity         decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	MechanicID       *uuid.UUID      `gorm:"type:uuid;index" json:"mechanic_id,omitempty"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"commission_amount"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewLine fija LineTotal = Quantity × UnitPrice.
func NewLine(kind LineKind, sourceID uuid.UUID, desc string, qty, price decimal.Decimal, mechanic *uuid.UUID) OrderLine {
	return OrderLine{
		ID:          uuid.New(),
		Kind:        kind,
		SourceID:    sourceID,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		LineTotal:   qty.Mul(price).Round(2),
		MechanicID:  mechanic,
	}
}

func SumLines(lines []OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

type OrderFilter struct {
	Status   ProcessStatus
	ClientID uuid.UUID
	Page     int
	PageSize int
}
