package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func linesOrder(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") }

func (r *OrderRepo) Create(ctx context.Context, o *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Omit("Lines").Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.WorkOrder, error) {
	var o domain.WorkOrder
	if err := r.db.WithContext(ctx).Preload("Lines", linesOrder).First(&o, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepo) List(ctx context.Context, tenantID uuid.UUID, f domain.OrderFilter) ([]domain.WorkOrder, int64, error) {
	var list []domain.WorkOrder
	q := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("tenant_id = ?", tenantID)
	if f.Status != "" {
		q = q.Where("process_status = ?", f.Status)
	}
	if f.ClientID != uuid.Nil {
		q = q.Where("client_id = ?", f.ClientID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 50
	}
	offset := (f.Page - 1) * f.PageSize
	if err := q.Order("created_at desc, id desc").Offset(offset).Limit(f.PageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// statusMiss distingue una orden inexistente de una que cambió de estado.
func statusMiss(tx *gorm.DB, tenantID, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&domain.WorkOrder{}).Where("tenant_id = ? AND id = ?", tenantID, id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *OrderRepo) AppendLines(ctx context.Context, tenantID, orderID uuid.UUID, lines []domain.OrderLine) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// El incremento se hace en SQL: dos sesiones que agregan a la vez no pierden montos.
		res := tx.Model(&domain.WorkOrder{}).
			Where("tenant_id = ? AND id = ? AND process_status NOT IN ?", tenantID, orderID, []domain.ProcessStatus{domain.StatusPaid, domain.StatusCancelled}).
			Updates(map[string]any{"total": gorm.Expr("total + ?", domain.SumLines(lines))})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return statusMiss(tx, tenantID, orderID)
		}
		for i := range lines {
			lines[i].TenantID = tenantID
			lines[i].OrderID = orderID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		var o domain.WorkOrder
		if err := tx.Select("total").First(&o, "tenant_id = ? AND id = ?", tenantID, orderID).Error; err != nil {
			return err
		}
		total = o.Total
		return nil
	})
	return total, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to domain.ProcessStatus) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&domain.WorkOrder{}).
		Where("tenant_id = ? AND id = ? AND process_status = ?", tenantID, id, from).
		Updates(map[string]any{"process_status": to, "status": to.LegacyStatus()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return statusMiss(db, tenantID, id)
	}
	return nil
}

// MarkPaid pasa la orden de delivered a paid y genera las comisiones con las
// líneas leídas después del cambio de estado. El UPDATE condicional toma el
// lock de la fila, así que un AppendLines concurrente termina antes y su
// línea entra, o ve la orden pagada y falla.
func (r *OrderRepo) MarkPaid(ctx context.Context, tenantID, id uuid.UUID, paidAt time.Time) ([]domain.Commission, error) {
	var due []domain.Commission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.WorkOrder{}).
			Where("tenant_id = ? AND id = ? AND process_status = ?", tenantID, id, domain.StatusDelivered).
			Updates(map[string]any{
				"process_status": domain.StatusPaid,
				"status":         domain.StatusPaid.LegacyStatus(),
				"paid_at":        paidAt.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return statusMiss(tx, tenantID, id)
		}
		o := domain.WorkOrder{ID: id, TenantID: tenantID}
		if err := linesOrder(tx).Where("tenant_id = ? AND order_id = ?", tenantID, id).Find(&o.Lines).Error; err != nil {
			return err
		}
		due = o.CommissionsDue(paidAt)
		if len(due) == 0 {
			return nil
		}
		return tx.Create(&due).Error
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}

// Delete borra las líneas y después la orden. Primero se toma la fila con un
// UPDATE condicional para que no la paguen mientras tanto. Una orden pagada
// no se borra.
func (r *OrderRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.WorkOrder{}).
			Where("tenant_id = ? AND id = ? AND process_status <> ?", tenantID, id, domain.StatusPaid).
			Update("process_status", gorm.Expr("process_status"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return statusMiss(tx, tenantID, id)
		}
		if err := tx.Where("tenant_id = ? AND order_id = ?", tenantID, id).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&domain.WorkOrder{}).Error
	})
}

func (r *OrderRepo) ListPaidInRange(ctx context.Context, tenantID uuid.UUID, basis domain.IncomeBasis, from, to time.Time) ([]domain.WorkOrder, error) {
	col := "created_at"
	if basis == domain.IncomeByPayment {
		col = "paid_at"
	}
	var list []domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND process_status = ?", tenantID, domain.StatusPaid).
		Where(col+" >= ? AND "+col+" < ?", from.UTC(), to.UTC()).
		Preload("Lines", linesOrder).
		Order(col + " asc, id asc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
