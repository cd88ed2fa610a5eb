package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
)

// RecipePolicy decide qué hacer con renglones de receta cuyo producto ya no existe.
type RecipePolicy string

const (
	// RecipeLenient descarta el renglón sin avisar.
	RecipeLenient RecipePolicy = "lenient"
	// RecipeStrict rechaza el servicio completo.
	RecipeStrict RecipePolicy = "strict"
)

func ParseRecipePolicy(s string) RecipePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(RecipeStrict)) {
		return RecipeStrict
	}
	return RecipeLenient
}

// ExpandService arma las líneas de orden de un servicio: una línea de servicio
// con la comisión del mecánico y una línea de producto por cada renglón de
// receta que resuelve en catalog. Devuelve además los productos no resueltos.
func ExpandService(svc *domain.ServiceEntry, catalog map[uuid.UUID]domain.InventoryItem, mechanicID uuid.UUID, now time.Time) ([]domain.OrderLine, []uuid.UUID) {
	mech := mechanicID
	lines := make([]domain.OrderLine, 0, 1+len(svc.Recipe))

	sl := domain.NewLine(domain.LineService, svc.ID, svc.Name, decimal.NewFromInt(1), svc.BasePrice, &mech)
	sl.CommissionAmount = svc.Commission()
	lines = append(lines, sl)

	var missing []uuid.UUID
	for _, rl := range svc.Recipe {
		it, ok := catalog[rl.ItemID]
		if !ok {
			missing = append(missing, rl.ItemID)
			continue
		}
		lines = append(lines, domain.NewLine(domain.LineProduct, it.ID, it.Name, rl.SuggestedQuantity, it.SalePrice, &mech))
	}
	stampLines(lines, now)
	return lines, missing
}

// stampLines separa los CreatedAt por un microsegundo para conservar el orden de carga.
func stampLines(lines []domain.OrderLine, now time.Time) {
	for i := range lines {
		lines[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}
}

// orderForLines carga la orden y verifica que todavía admita líneas.
func (uc *OrderUC) orderForLines(ctx context.Context, s domain.Session, orderID uuid.UUID) (*domain.WorkOrder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o, err := uc.Orders.FindByID(ctx, s.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.AcceptsLines() {
		return nil, domain.Invalid("order", "la orden está "+string(o.ProcessStatus)+" y no admite nuevas líneas")
	}
	return o, nil
}

// lineMechanic resuelve el mecánico de la línea: el elegido o el de la orden.
func (uc *OrderUC) lineMechanic(ctx context.Context, s domain.Session, o *domain.WorkOrder, override uuid.UUID) (uuid.UUID, error) {
	if override == uuid.Nil {
		return o.MechanicID, nil
	}
	m, err := uc.Mechanics.FindByID(ctx, s.TenantID, override)
	if err != nil {
		return uuid.Nil, err
	}
	if !m.Active {
		return uuid.Nil, domain.Invalid("mechanic_id", "el mecánico está inactivo")
	}
	return m.ID, nil
}

// AddService agrega un servicio y su receta a la orden. Las líneas y el nuevo
// total se escriben en una sola transacción.
func (uc *OrderUC) AddService(ctx context.Context, s domain.Session, orderID, serviceID, mechanicOverride uuid.UUID) ([]domain.OrderLine, decimal.Decimal, error) {
	o, err := uc.orderForLines(ctx, s, orderID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	svc, err := uc.Services.FindByID(ctx, s.TenantID, serviceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	mech, err := uc.lineMechanic(ctx, s, o, mechanicOverride)
	if err != nil {
		return nil, decimal.Zero, err
	}

	ids := make([]uuid.UUID, 0, len(svc.Recipe))
	for _, rl := range svc.Recipe {
		ids = append(ids, rl.ItemID)
	}
	items, err := uc.Items.FindByIDs(ctx, s.TenantID, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	catalog := make(map[uuid.UUID]domain.InventoryItem, len(items))
	for _, it := range items {
		catalog[it.ID] = it
	}

	lines, missing := ExpandService(svc, catalog, mech, clock(uc.Now).now())
	if len(missing) > 0 {
		if uc.Policy == RecipeStrict {
			return nil, decimal.Zero, &domain.UnresolvedRecipeError{ServiceID: svc.ID, ItemIDs: missing}
		}
		log.Debug().Str("service", svc.ID.String()).Int("missing", len(missing)).Msg("renglones de receta sin producto descartados")
	}

	total, err := uc.Orders.AppendLines(ctx, s.TenantID, o.ID, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableOrderLines, domain.TableOrders)
	return lines, total, nil
}

// AddProduct agrega un producto suelto. Los productos no generan comisión.
func (uc *OrderUC) AddProduct(ctx context.Context, s domain.Session, orderID, itemID uuid.UUID, qty decimal.Decimal, mechanicOverride uuid.UUID) (*domain.OrderLine, decimal.Decimal, error) {
	if !qty.IsPositive() {
		return nil, decimal.Zero, domain.Invalid("quantity", "debe ser mayor a 0")
	}
	o, err := uc.orderForLines(ctx, s, orderID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	it, err := uc.Items.FindByID(ctx, s.TenantID, itemID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	mech, err := uc.lineMechanic(ctx, s, o, mechanicOverride)
	if err != nil {
		return nil, decimal.Zero, err
	}
	lines := []domain.OrderLine{domain.NewLine(domain.LineProduct, it.ID, it.Name, qty, it.SalePrice, &mech)}
	stampLines(lines, clock(uc.Now).now())
	total, err := uc.Orders.AppendLines(ctx, s.TenantID, o.ID, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableOrderLines, domain.TableOrders)
	return &lines[0], total, nil
}
