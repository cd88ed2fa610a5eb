package feed

import (
	"context"
	"sync"

	"github.com/phenrril/bicitaller/internal/domain"
)

// Bus es el feed en proceso. Un suscriptor lento pierde eventos en vez de
// bloquear al escritor; como el evento sólo dice "volvé a consultar", una
// ráfaga se colapsa en un único refetch.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.Change]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: map[string]map[chan domain.Change]struct{}{}}
}

func (b *Bus) Publish(_ context.Context, c domain.Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[c.Table] {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, tables ...string) (<-chan domain.Change, error) {
	ch := make(chan domain.Change, 16)
	b.mu.Lock()
	for _, t := range tables {
		if b.subs[t] == nil {
			b.subs[t] = map[chan domain.Change]struct{}{}
		}
		b.subs[t][ch] = struct{}{}
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for _, t := range tables {
			delete(b.subs[t], ch)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
