package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

type refCounter struct{ db *gorm.DB }

// CountReferences cuenta filas del tenant que apuntan a id. Table y Column
// vienen de constantes del dominio, nunca de la request.
func (r refCounter) CountReferences(ctx context.Context, tenantID uuid.UUID, ref domain.Reference, id uuid.UUID) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Table(ref.Table).Where("tenant_id = ? AND "+ref.Column+" = ?", tenantID, id)
	if ref.Kind != "" {
		q = q.Where("kind = ?", ref.Kind)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func rowsOrNotFound(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
