package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/domain"
)

const channelPrefix = "bicitaller:changes:"

// RedisFeed reparte los cambios entre instancias con pub/sub, un canal por tabla.
type RedisFeed struct {
	rdb *redis.Client
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed { return &RedisFeed{rdb: rdb} }

func (f *RedisFeed) Publish(ctx context.Context, c domain.Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, channelPrefix+c.Table, payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, tables ...string) (<-chan domain.Change, error) {
	channels := make([]string, 0, len(tables))
	for _, t := range tables {
		channels = append(channels, channelPrefix+t)
	}
	ps := f.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", tables, err)
	}

	out := make(chan domain.Change, 16)
	go func() {
		defer ps.Close()
		forward(ctx, ps.Channel(), out)
	}()
	return out, nil
}

// forward decodifica los mensajes y los entrega en out hasta que ctx termina
// o msgs se cierra. No descarta eventos: la cache de otras instancias depende
// de cada uno, así que un consumidor lento frena la lectura.
func forward(ctx context.Context, msgs <-chan *redis.Message, out chan<- domain.Change) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var c domain.Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("evento de cambio inválido")
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}
