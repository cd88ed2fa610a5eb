package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type ClientRepo struct {
	refCounter
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) *ClientRepo { return &ClientRepo{refCounter: refCounter{db}, db: db} }

func (r *ClientRepo) Save(ctx context.Context, c *domain.Client) error {
	if c.Email != "" {
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	}
	return r.db.WithContext(ctx).Omit("Bikes").Save(c).Error
}

func (r *ClientRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.WithContext(ctx).
		Preload("Bikes", func(db *gorm.DB) *gorm.DB { return db.Order("brand asc, model asc, id asc") }).
		First(&c, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ClientRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Client, error) {
	var list []domain.Client
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ClientRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&domain.Client{}))
}

// --- Bicicletas ---

func (r *ClientRepo) SaveBike(ctx context.Context, b *domain.Bike) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *ClientRepo) FindBike(ctx context.Context, tenantID, id uuid.UUID) (*domain.Bike, error) {
	var b domain.Bike
	if err := r.db.WithContext(ctx).First(&b, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *ClientRepo) ListBikes(ctx context.Context, tenantID, clientID uuid.UUID) ([]domain.Bike, error) {
	var list []domain.Bike
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if clientID != uuid.Nil {
		q = q.Where("client_id = ?", clientID)
	}
	if err := q.Order("brand asc, model asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ClientRepo) DeleteBike(ctx context.Context, tenantID, id uuid.UUID) error {
	return rowsOrNotFound(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&domain.Bike{}))
}
