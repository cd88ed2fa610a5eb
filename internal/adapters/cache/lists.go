package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/domain"
)

type key struct {
	table  string
	tenant uuid.UUID
}

// Lists guarda el último listado por (tabla, tenant). La única regla de
// invalidación: un cambio en (tabla, tenant) borra esa entrada y el próximo
// listado vuelve a consultar. Cada Invalidate sube la generación de la clave;
// un Put hecho con una generación vieja se descarta.
type Lists struct {
	mu   sync.RWMutex
	m    map[key]any
	gens map[key]uint64
}

func NewLists() *Lists { return &Lists{m: map[key]any{}, gens: map[key]uint64{}} }

func (l *Lists) Get(table string, tenantID uuid.UUID) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.m[key{table, tenantID}]
	return v, ok
}

// Generation se lee antes de consultar la base y se pasa después a Put.
func (l *Lists) Generation(table string, tenantID uuid.UUID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gens[key{table, tenantID}]
}

// Put guarda v si la entrada no se invalidó desde gen. Devuelve si lo guardó.
func (l *Lists) Put(table string, tenantID uuid.UUID, gen uint64, v any) bool {
	k := key{table, tenantID}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gens[k] != gen {
		return false
	}
	l.m[k] = v
	return true
}

func (l *Lists) Invalidate(table string, tenantID uuid.UUID) {
	k := key{table, tenantID}
	l.mu.Lock()
	delete(l.m, k)
	l.gens[k]++
	l.mu.Unlock()
}

// Watch invalida entradas a medida que llegan cambios de otras instancias.
// Corre hasta que ctx se cancela.
func (l *Lists) Watch(ctx context.Context, feed domain.ChangeFeed, tables ...string) error {
	ch, err := feed.Subscribe(ctx, tables...)
	if err != nil {
		return err
	}
	go func() {
		for c := range ch {
			l.Invalidate(c.Table, c.TenantID)
			log.Debug().Str("table", c.Table).Str("tenant", c.TenantID.String()).Msg("cache invalidada")
		}
	}()
	return nil
}
