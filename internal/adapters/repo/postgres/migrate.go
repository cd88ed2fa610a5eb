package postgres

import (
	"gorm.io/gorm"

	"github.com/phenrril/bicitaller/internal/domain"
)

// Models devuelve las entidades que maneja el esquema, en orden de migración.
func Models() []any {
	return []any{
		&domain.Client{}, &domain.Bike{}, &domain.InventoryItem{}, &domain.ServiceEntry{}, &domain.RecipeLine{},
		&domain.Mechanic{}, &domain.WorkOrder{}, &domain.OrderLine{}, &domain.Commission{},
	}
}

// Migrate crea o actualiza el esquema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
