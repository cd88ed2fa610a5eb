package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/domain"
)

// Notifier centraliza lo que pasa después de una escritura exitosa: se
// invalida el listado local y se avisa al feed para el resto de las sesiones.
// Un Notifier nil no hace nada.
type Notifier struct {
	Feed  domain.ChangeFeed
	Cache domain.ListCache
}

func (n *Notifier) Changed(ctx context.Context, tenantID uuid.UUID, tables ...string) {
	if n == nil {
		return
	}
	for _, t := range tables {
		if n.Cache != nil {
			n.Cache.Invalidate(t, tenantID)
		}
		if n.Feed == nil {
			continue
		}
		if err := n.Feed.Publish(ctx, domain.Change{Table: t, TenantID: tenantID}); err != nil {
			log.Warn().Err(err).Str("table", t).Msg("no se pudo publicar el cambio")
		}
	}
}

func (n *Notifier) cache() domain.ListCache {
	if n == nil {
		return nil
	}
	return n.Cache
}

// cachedList devuelve el listado cacheado o lo consulta y lo guarda. Si una
// escritura invalida la entrada mientras corre load, el resultado se devuelve
// pero no se cachea.
func cachedList[T any](n *Notifier, table string, tenantID uuid.UUID, load func() ([]T, error)) ([]T, error) {
	c := n.cache()
	var gen uint64
	if c != nil {
		if v, ok := c.Get(table, tenantID); ok {
			if list, ok := v.([]T); ok {
				return slices.Clone(list), nil
			}
		}
		gen = c.Generation(table, tenantID)
	}
	list, err := load()
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.Put(table, tenantID, gen, slices.Clone(list))
	}
	return list, nil
}

// guardDelete rechaza el borrado si alguna relación todavía referencia a id.
func guardDelete(ctx context.Context, rc domain.RefCounter, tenantID uuid.UUID, entity string, id uuid.UUID, refs []domain.Reference) error {
	for _, ref := range refs {
		n, err := rc.CountReferences(ctx, tenantID, ref, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.DependencyError{Entity: entity, Relation: ref.Relation, Count: n}
		}
	}
	return nil
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
