package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/domain"
)

type CommissionUC struct {
	Commissions domain.CommissionRepo
	Notify      *Notifier
	Now         func() time.Time
}

func (uc *CommissionUC) List(ctx context.Context, s domain.Session, f domain.CommissionFilter) ([]domain.Commission, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if f.Status != "" && f.Status != domain.CommissionPending && f.Status != domain.CommissionPaid {
		return nil, domain.Invalid("status", "debe ser pending o paid")
	}
	return uc.Commissions.List(ctx, s.TenantID, f)
}

// Settle liquida comisiones pendientes y devuelve cuántas cambiaron.
func (uc *CommissionUC) Settle(ctx context.Context, s domain.Session, ids []uuid.UUID) (int64, error) {
	if err := s.RequireManager(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, domain.Invalid("ids", "requerido")
	}
	n, err := uc.Commissions.Settle(ctx, s.TenantID, ids, clock(uc.Now).now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("settled", n).Msg("comisiones liquidadas")
		uc.Notify.Changed(ctx, s.TenantID, domain.TableCommissions)
	}
	return n, nil
}
