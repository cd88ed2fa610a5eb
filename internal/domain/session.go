package domain

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleMechanic   Role = "mechanic"
	RoleSuperAdmin Role = "superadmin"
)

// Session es el contexto de identidad que el proveedor externo entrega en cada
// operación. Se pasa explícitamente; no hay estado global.
type Session struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     Role
}

func (s Session) Validate() error {
	if s.TenantID == uuid.Nil {
		return Invalid("tenant_id", "requerido")
	}
	switch s.Role {
	case RoleAdmin, RoleMechanic, RoleSuperAdmin:
		return nil
	}
	return Invalid("role", "desconocido")
}

func (s Session) CanManage() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuperAdmin
}

// RequireManager valida la sesión y exige rol admin o superadmin.
func (s Session) RequireManager() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.CanManage() {
		return ErrForbidden
	}
	return nil
}
