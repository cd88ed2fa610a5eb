package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/bicitaller/internal/domain"
)

var (
	clientRefs = []domain.Reference{
		{Relation: domain.RelBikes, Table: domain.TableBikes, Column: "client_id"},
		{Relation: domain.RelWorkOrders, Table: domain.TableOrders, Column: "client_id"},
	}
	bikeRefs = []domain.Reference{
		{Relation: domain.RelWorkOrders, Table: domain.TableOrders, Column: "bike_id"},
	}
)

type ClientUC struct {
	Clients domain.ClientRepo
	Notify  *Notifier
	Now     func() time.Time
}

type ClientPatch struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type BikePatch struct {
	Brand  *string          `json:"brand"`
	Model  *string          `json:"model"`
	Type   *domain.BikeType `json:"type"`
	Color  *string          `json:"color"`
	Serial *string          `json:"serial"`
	Year   *int             `json:"year"`
}

func (uc *ClientUC) List(ctx context.Context, s domain.Session) ([]domain.Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return cachedList(uc.Notify, domain.TableClients, s.TenantID, func() ([]domain.Client, error) {
		return uc.Clients.List(ctx, s.TenantID)
	})
}

func (uc *ClientUC) Get(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Clients.FindByID(ctx, s.TenantID, id)
}

func (uc *ClientUC) Create(ctx context.Context, s domain.Session, c *domain.Client) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = uuid.New()
	c.TenantID = s.TenantID
	c.Bikes = nil
	c.CreatedAt = clock(uc.Now).now()
	if err := uc.Clients.Save(ctx, c); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableClients)
	return nil
}

func (uc *ClientUC) Update(ctx context.Context, s domain.Session, id uuid.UUID, p ClientPatch) (*domain.Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c, err := uc.Clients.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Clients.Save(ctx, c); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableClients)
	return c, nil
}

// Delete sólo borra clientes sin bicicletas ni órdenes.
func (uc *ClientUC) Delete(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	if err := guardDelete(ctx, uc.Clients, s.TenantID, "el cliente", id, clientRefs); err != nil {
		return err
	}
	if err := uc.Clients.Delete(ctx, s.TenantID, id); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableClients)
	return nil
}

// --- Bicicletas ---

func (uc *ClientUC) ListBikes(ctx context.Context, s domain.Session, clientID uuid.UUID) ([]domain.Bike, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Clients.ListBikes(ctx, s.TenantID, clientID)
}

func (uc *ClientUC) CreateBike(ctx context.Context, s domain.Session, b *domain.Bike) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := uc.Clients.FindByID(ctx, s.TenantID, b.ClientID); err != nil {
		return err
	}
	b.ID = uuid.New()
	b.TenantID = s.TenantID
	b.CreatedAt = clock(uc.Now).now()
	if err := uc.Clients.SaveBike(ctx, b); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableBikes, domain.TableClients)
	return nil
}

func (uc *ClientUC) UpdateBike(ctx context.Context, s domain.Session, id uuid.UUID, p BikePatch) (*domain.Bike, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b, err := uc.Clients.FindBike(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Brand != nil {
		b.Brand = *p.Brand
	}
	if p.Model != nil {
		b.Model = *p.Model
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
	if p.Serial != nil {
		b.Serial = *p.Serial
	}
	if p.Year != nil {
		b.Year = p.Year
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Clients.SaveBike(ctx, b); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableBikes, domain.TableClients)
	return b, nil
}

func (uc *ClientUC) DeleteBike(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	if err := guardDelete(ctx, uc.Clients, s.TenantID, "la bicicleta", id, bikeRefs); err != nil {
		return err
	}
	if err := uc.Clients.DeleteBike(ctx, s.TenantID, id); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableBikes, domain.TableClients)
	return nil
}
