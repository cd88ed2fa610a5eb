package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type CommissionRepo struct{ db *gorm.DB }

func NewCommissionRepo(db *gorm.DB) *CommissionRepo { return &CommissionRepo{db: db} }

func (r *CommissionRepo) List(ctx context.Context, tenantID uuid.UUID, f domain.CommissionFilter) ([]domain.Commission, error) {
	var list []domain.Commission
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if f.MechanicID != uuid.Nil {
		q = q.Where("mechanic_id = ?", f.MechanicID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("computed_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("computed_at < ?", f.To.UTC())
	}
	if err := q.Order("computed_at asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Settle marca como pagadas las comisiones pendientes de ids; las ya pagadas se ignoran.
func (r *CommissionRepo) Settle(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, paidAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Commission{}).
		Where("tenant_id = ? AND id IN ? AND status = ?", tenantID, ids, domain.CommissionPending).
		Updates(map[string]any{"status": domain.CommissionPaid, "paid_at": paidAt.UTC()})
	return res.RowsAffected, res.Error
}
