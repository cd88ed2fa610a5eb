package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Name      string    `gorm:"size:140;not null;index" json:"name"`
	Phone     string    `gorm:"size:60" json:"phone,omitempty"`
	Email     string    `gorm:"size:140" json:"email,omitempty"`
	Address   string    `gorm:"size:255" json:"address,omitempty"`
	Bikes     []Bike    `gorm:"foreignKey:ClientID" json:"bikes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "requerido")
	}
	return nil
}

type BikeType string

const (
	BikeRoad  BikeType = "road"
	BikeMTB   BikeType = "mtb"
	BikeUrban BikeType = "urban"
	BikeEBike BikeType = "ebike"
	BikeKids  BikeType = "kids"
	BikeOther BikeType = "other"
)

func (t BikeType) Valid() bool {
	switch t {
	case BikeRoad, BikeMTB, BikeUrban, BikeEBike, BikeKids, BikeOther:
		return true
	}
	return false
}

type Bike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Brand     string    `gorm:"size:100;not null" json:"brand"`
	Model     string    `gorm:"size:140;not null" json:"model"`
	Type      BikeType  `gorm:"type:varchar(20);not null" json:"type"`
	Color     string    `gorm:"size:60" json:"color,omitempty"`
	Serial    string    `gorm:"size:120" json:"serial,omitempty"`
	Year      *int      `json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bike) Validate() error {
	if b.ClientID == uuid.Nil {
		return Invalid("client_id", "requerido")
	}
	if strings.TrimSpace(b.Brand) == "" {
		return Invalid("brand", "requerido")
	}
	if strings.TrimSpace(b.Model) == "" {
		return Invalid("model", "requerido")
	}
	if !b.Type.Valid() {
		return Invalid("type", "tipo de bicicleta inválido")
	}
	if b.Year != nil && (*b.Year < 1900 || *b.Year > 2100) {
		return Invalid("year", "fuera de rango")
	}
	return nil
}
