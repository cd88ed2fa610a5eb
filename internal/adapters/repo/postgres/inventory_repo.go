package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type InventoryRepo struct {
	refCounter
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) *InventoryRepo {
	return &InventoryRepo{refCounter: refCounter{db}, db: db}
}

func (r *InventoryRepo) Save(ctx context.Context, it *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *InventoryRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.InventoryItem, error) {
	var it domain.InventoryItem
	if err := r.db.WithContext(ctx).First(&it, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *InventoryRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []domain.InventoryItem
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *InventoryRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.InventoryItem, error) {
	var list []domain.InventoryItem
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *InventoryRepo) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]domain.InventoryItem, error) {
	var list []domain.InventoryItem
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND stock <= min_stock", tenantID).Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *InventoryRepo) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Model(&domain.InventoryItem{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", delta)))
}

func (r *InventoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&domain.InventoryItem{}))
}
