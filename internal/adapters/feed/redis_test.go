package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/phenrril/bicitaller/internal/domain"
)

func TestForwardDeliversEveryChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenant := uuid.New()
	msgs := make(chan *redis.Message, 40)
	for i := 0; i < 40; i++ {
		payload, _ := json.Marshal(domain.Change{Table: domain.TableClients, TenantID: tenant})
		msgs <- &redis.Message{Channel: channelPrefix + domain.TableClients, Payload: string(payload)}
	}
	msgs <- &redis.Message{Channel: channelPrefix + domain.TableClients, Payload: "{"}
	close(msgs)

	// buffer más chico que la ráfaga: el consumidor lento no debe perder eventos
	out := make(chan domain.Change, 2)
	go forward(ctx, msgs, out)

	got := 0
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c, ok := <-out:
			if !ok {
				if got != 40 {
					t.Fatalf("expected 40 changes got %d", got)
				}
				return
			}
			if c.TenantID != tenant || c.Table != domain.TableClients {
				t.Fatalf("unexpected change %+v", c)
			}
			got++
			time.Sleep(time.Millisecond)
		case <-timeout:
			t.Fatalf("forward stalled after %d changes", got)
		}
	}
}

func TestForwardStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan *redis.Message)
	out := make(chan domain.Change)
	done := make(chan struct{})
	go func() {
		forward(ctx, msgs, out)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("forward did not stop")
	}
	if _, ok := <-out; ok {
		t.Fatalf("out should be closed")
	}
}
