package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/bicitaller/internal/domain"
)

type MechanicUC struct {
	Mechanics domain.MechanicRepo
	Notify    *Notifier
	Now       func() time.Time
}

type MechanicPatch struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
	Active    *bool   `json:"active"`
}

// List cachea el listado completo y filtra los inactivos en memoria.
func (uc *MechanicUC) List(ctx context.Context, s domain.Session, includeInactive bool) ([]domain.Mechanic, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	all, err := cachedList(uc.Notify, domain.TableMechanics, s.TenantID, func() ([]domain.Mechanic, error) {
		return uc.Mechanics.List(ctx, s.TenantID, true)
	})
	if err != nil || includeInactive {
		return all, err
	}
	active := make([]domain.Mechanic, 0, len(all))
	for _, m := range all {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func (uc *MechanicUC) Get(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.Mechanic, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Mechanics.FindByID(ctx, s.TenantID, id)
}

func (uc *MechanicUC) Create(ctx context.Context, s domain.Session, m *domain.Mechanic) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return err
	}
	m.ID = uuid.New()
	m.TenantID = s.TenantID
	m.Active = true
	m.CreatedAt = clock(uc.Now).now()
	if err := uc.Mechanics.Save(ctx, m); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableMechanics)
	return nil
}

func (uc *MechanicUC) Update(ctx context.Context, s domain.Session, id uuid.UUID, p MechanicPatch) (*domain.Mechanic, error) {
	if err := s.RequireManager(); err != nil {
		return nil, err
	}
	m, err := uc.Mechanics.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Specialty != nil {
		m.Specialty = *p.Specialty
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Mechanics.Save(ctx, m); err != nil {
		return nil, err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableMechanics)
	return m, nil
}

// Delete es siempre lógico: el mecánico queda inactivo y sus órdenes y
// comisiones siguen apuntándolo.
func (uc *MechanicUC) Delete(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	if err := uc.Mechanics.SetActive(ctx, s.TenantID, id, false); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableMechanics)
	return nil
}
