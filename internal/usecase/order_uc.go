package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/phenrril/bicitaller/internal/domain"
)

type OrderUC struct {
	Orders    domain.OrderRepo
	Clients   domain.ClientRepo
	Mechanics domain.MechanicRepo
	Services  domain.ServiceRepo
	Items     domain.InventoryRepo
	Policy    RecipePolicy
	Notify    *Notifier
	Now       func() time.Time
}

type NewOrder struct {
	ClientID   uuid.UUID       `json:"client_id"`
	BikeID     uuid.UUID       `json:"bike_id"`
	MechanicID uuid.UUID       `json:"mechanic_id"`
	Checklist  json.RawMessage `json:"checklist,omitempty"`
}

func (uc *OrderUC) List(ctx context.Context, s domain.Session, f domain.OrderFilter) ([]domain.WorkOrder, int64, error) {
	if err := s.Validate(); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.Invalid("status", "estado desconocido")
	}
	return uc.Orders.List(ctx, s.TenantID, f)
}

func (uc *OrderUC) Get(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Orders.FindByID(ctx, s.TenantID, id)
}

// Create abre una orden. Cliente, bicicleta, mecánico y checklist quedan
// fijos desde acá.
func (uc *OrderUC) Create(ctx context.Context, s domain.Session, in NewOrder) (*domain.WorkOrder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := &domain.WorkOrder{
		ClientID:   in.ClientID,
		BikeID:     in.BikeID,
		MechanicID: in.MechanicID,
		Checklist:  datatypes.JSON(in.Checklist),
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.Clients.FindByID(ctx, s.TenantID, in.ClientID); err != nil {
		return nil, err
	}
	bike, err := uc.Clients.FindBike(ctx, s.TenantID, in.BikeID)
	if err != nil {
		return nil, err
	}
	if bike.ClientID != in.ClientID {
		return nil, domain.Invalid("bike_id", "la bicicleta no pertenece al cliente")
	}
	m, err := uc.Mechanics.FindByID(ctx, s.TenantID, in.MechanicID)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, domain.Invalid("mechanic_id", "el mecánico está inactivo")
	}

	o.ID = uuid.New()
	o.TenantID = s.TenantID
	o.ProcessStatus = domain.StatusOpen
	o.Status = domain.StatusOpen.LegacyStatus()
	o.Total = decimal.Zero
	o.CreatedAt = clock(uc.Now).now()
	if err := uc.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableOrders)
	return o, nil
}

// Transition mueve la orden al estado to. Sólo delivered -> paid tiene
// efectos: genera las comisiones pendientes en la misma transacción que marca
// el pago, así que reintentar después de un éxito falla en vez de duplicar.
// Las comisiones salen de las líneas leídas dentro de esa transacción, no de o.
func (uc *OrderUC) Transition(ctx context.Context, s domain.Session, id uuid.UUID, to domain.ProcessStatus) (*domain.WorkOrder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, domain.Invalid("to", "estado desconocido")
	}
	o, err := uc.Orders.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	from := o.ProcessStatus
	if !domain.CanTransition(from, to) {
		return nil, &domain.TransitionError{From: from, To: to}
	}

	tables := []string{domain.TableOrders}
	if to == domain.StatusPaid {
		due, err := uc.Orders.MarkPaid(ctx, s.TenantID, id, clock(uc.Now).now())
		if err != nil {
			return nil, err
		}
		tables = append(tables, domain.TableCommissions)
		log.Info().Str("order", id.String()).Int("commissions", len(due)).Str("total", o.Total.StringFixed(2)).Msg("orden pagada")
	} else if err := uc.Orders.UpdateStatus(ctx, s.TenantID, id, from, to); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, tables...)
	return uc.Orders.FindByID(ctx, s.TenantID, id)
}

func (uc *OrderUC) Start(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusInProgress)
}

func (uc *OrderUC) Finish(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusReady)
}

func (uc *OrderUC) Deliver(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusDelivered)
}

func (uc *OrderUC) RegisterPayment(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusPaid)
}

func (uc *OrderUC) Cancel(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusCancelled)
}

func (uc *OrderUC) Reopen(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.WorkOrder, error) {
	return uc.Transition(ctx, s, id, domain.StatusOpen)
}

// Delete borra la orden con sus líneas. Las órdenes pagadas no se borran.
func (uc *OrderUC) Delete(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	o, err := uc.Orders.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return err
	}
	if o.ProcessStatus == domain.StatusPaid {
		return domain.Invalid("order", "una orden pagada no se puede eliminar")
	}
	if err := uc.Orders.Delete(ctx, s.TenantID, id); err != nil {
		return err
	}
	log.Info().Str("order", id.String()).Int("lines", len(o.Lines)).Msg("orden eliminada")
	uc.Notify.Changed(ctx, s.TenantID, domain.TableOrders, domain.TableOrderLines)
	return nil
}
