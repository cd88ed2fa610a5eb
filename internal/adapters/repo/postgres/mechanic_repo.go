package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type MechanicRepo struct{ db *gorm.DB }

func NewMechanicRepo(db *gorm.DB) *MechanicRepo { return &MechanicRepo{db: db} }

func (r *MechanicRepo) Save(ctx context.Context, m *domain.Mechanic) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MechanicRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Mechanic, error) {
	var m domain.Mechanic
	if err := r.db.WithContext(ctx).First(&m, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MechanicRepo) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]domain.Mechanic, error) {
	var list []domain.Mechanic
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MechanicRepo) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Model(&domain.Mechanic{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("active", active))
}
