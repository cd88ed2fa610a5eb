package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mechanic nunca se borra físicamente; Active=false lo retira de las listas.
type Mechanic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Name      string    `gorm:"size:140;not null;index" json:"name"`
	Specialty string    `gorm:"size:140" json:"specialty,omitempty"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Mechanic) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return Invalid("name", "requerido")
	}
	return nil
}
