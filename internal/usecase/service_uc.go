package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
)

var serviceRefs = []domain.Reference{
	{Relation: domain.RelOrderLines, Table: domain.TableOrderLines, Column: "source_id", Kind: domain.LineService},
}

type ServiceUC struct {
	Services domain.ServiceRepo
	Items    domain.InventoryRepo
	Notify   *Notifier
	Now      func() time.Time
}

// ServicePatch: si Recipe viene (aunque sea vacía) reemplaza la receta completa.
type ServicePatch struct {
	Name               *string              `json:"name"`
	Description        *string              `json:"description"`
	BasePrice          *decimal.Decimal     `json:"base_price"`
	CommissionFraction *decimal.Decimal     `json:"commission_fraction"`
	Recipe             *[]domain.RecipeLine `json:"recipe"`
}

func (uc *ServiceUC) List(ctx context.Context, s domain.Session) ([]domain.ServiceEntry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return cachedList(uc.Notify, domain.TableServices, s.TenantID, func() ([]domain.ServiceEntry, error) {
		return uc.Services.List(ctx, s.TenantID)
	})
}

func (uc *ServiceUC) Get(ctx context.Context, s domain.Session, id uuid.UUID) (*domain.ServiceEntry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return uc.Services.FindByID(ctx, s.TenantID, id)
}

// checkRecipeItems exige que cada producto de la receta exista al definirla.
func (uc *ServiceUC) checkRecipeItems(ctx context.Context, tenantID uuid.UUID, lines []domain.RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, rl := range lines {
		ids = append(ids, rl.ItemID)
	}
	items, err := uc.Items.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		found[it.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return domain.Invalid("recipe.item_id", "el producto "+id.String()+" no existe")
		}
	}
	return nil
}

func (uc *ServiceUC) Create(ctx context.Context, s domain.Session, svc *domain.ServiceEntry) error {
	if err := s.Validate(); err != nil {
		return err
	}
	svc.Name = strings.TrimSpace(svc.Name)
	if err := svc.Validate(); err != nil {
		return err
	}
	if err := uc.checkRecipeItems(ctx, s.TenantID, svc.Recipe); err != nil {
		return err
	}
	recipe := svc.Recipe
	svc.ID = uuid.New()
	svc.TenantID = s.TenantID
	svc.CreatedAt = clock(uc.Now).now()
	svc.Recipe = nil
	if err := uc.Services.Save(ctx, svc); err != nil {
		return err
	}
	if len(recipe) > 0 {
		if err := uc.Services.ReplaceRecipe(ctx, s.TenantID, svc.ID, recipe); err != nil {
			return err
		}
	}
	svc.Recipe = recipe
	uc.Notify.Changed(ctx, s.TenantID, domain.TableServices, domain.TableRecipes)
	return nil
}

func (uc *ServiceUC) Update(ctx context.Context, s domain.Session, id uuid.UUID, p ServicePatch) (*domain.ServiceEntry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	svc, err := uc.Services.FindByID(ctx, s.TenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		svc.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		svc.Description = *p.Description
	}
	if p.BasePrice != nil {
		svc.BasePrice = *p.BasePrice
	}
	if p.CommissionFraction != nil {
		svc.CommissionFraction = *p.CommissionFraction
	}
	if p.Recipe != nil {
		svc.Recipe = *p.Recipe
		if err := uc.checkRecipeItems(ctx, s.TenantID, svc.Recipe); err != nil {
			return nil, err
		}
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	recipe := svc.Recipe
	svc.Recipe = nil
	if err := uc.Services.Save(ctx, svc); err != nil {
		return nil, err
	}
	if p.Recipe != nil {
		if err := uc.Services.ReplaceRecipe(ctx, s.TenantID, svc.ID, recipe); err != nil {
			return nil, err
		}
		log.Info().Str("service", svc.ID.String()).Int("lines", len(recipe)).Msg("receta reemplazada")
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableServices, domain.TableRecipes)
	return uc.Services.FindByID(ctx, s.TenantID, id)
}

// Delete sólo borra servicios que nunca se cargaron en una orden; la receta se va con él.
func (uc *ServiceUC) Delete(ctx context.Context, s domain.Session, id uuid.UUID) error {
	if err := s.RequireManager(); err != nil {
		return err
	}
	if err := guardDelete(ctx, uc.Services, s.TenantID, "el servicio", id, serviceRefs); err != nil {
		return err
	}
	if err := uc.Services.Delete(ctx, s.TenantID, id); err != nil {
		return err
	}
	uc.Notify.Changed(ctx, s.TenantID, domain.TableServices, domain.TableRecipes)
	return nil
}
