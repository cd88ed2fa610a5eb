package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type ServiceRepo struct {
	refCounter
	db *gorm.DB
}

func NewServiceRepo(db *gorm.DB) *ServiceRepo { return &ServiceRepo{refCounter: refCounter{db}, db: db} }

func recipeOrder(db *gorm.DB) *gorm.DB { return db.Order("id asc") }

// Save guarda el servicio sin tocar la receta; la receta se maneja con ReplaceRecipe.
func (r *ServiceRepo) Save(ctx context.Context, s *domain.ServiceEntry) error {
	return r.db.WithContext(ctx).Omit("Recipe").Save(s).Error
}

func (r *ServiceRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.ServiceEntry, error) {
	var s domain.ServiceEntry
	if err := r.db.WithContext(ctx).Preload("Recipe", recipeOrder).First(&s, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *ServiceRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.ServiceEntry, error) {
	var list []domain.ServiceEntry
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Preload("Recipe", recipeOrder).Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ReplaceRecipe no calcula diferencias: borra todo e inserta lo nuevo. Dos
// ediciones simultáneas del mismo servicio quedan con la última que confirme.
func (r *ServiceRepo) ReplaceRecipe(ctx context.Context, tenantID, serviceID uuid.UUID, lines []domain.RecipeLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND service_id = ?", tenantID, serviceID).Delete(&domain.RecipeLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			if lines[i].ID == uuid.Nil {
				lines[i].ID = uuid.New()
			}
			lines[i].TenantID = tenantID
			lines[i].ServiceID = serviceID
		}
		return tx.Create(&lines).Error
	})
}

func (r *ServiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND service_id = ?", tenantID, id).Delete(&domain.RecipeLine{}).Error; err != nil {
			return err
		}
		return rowsOrNotFound(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&domain.ServiceEntry{}))
	})
}
