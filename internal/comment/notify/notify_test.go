package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(zerolog.New(&buf))

	n.Notify(context.Background(), Event{Kind: Failed, Post: "p", Detail: "quota exceeded"})
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"detail":"quota exceeded"`) {
		t.Fatalf("unexpected log output %s", out)
	}
}

func TestRedisNotifierPublishes(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), Protocol: 2})
	defer client.Close()
	ctx := context.Background()

	sub := client.Subscribe(ctx, "thread-events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n := NewRedis(client, "thread-events", zerolog.Nop())
	n.Notify(ctx, Event{Kind: ReplyPosted, Post: "p", NodeID: "a", At: time.Unix(0, 0).UTC()})

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.Kind != ReplyPosted || ev.NodeID != "a" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestRedisNotifierSwallowsErrors(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	s.Close()

	var buf bytes.Buffer
	NewRedis(client, "c", zerolog.New(&buf)).Notify(context.Background(), Event{Kind: CommentPosted})
	if !strings.Contains(buf.String(), "publish thread event failed") {
		t.Fatalf("expected warning, got %s", buf.String())
	}
}

type counter struct{ n int }

func (c *counter) Notify(context.Context, Event) { c.n++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &counter{}, &counter{}
	Multi{a, Nop{}, b}.Notify(context.Background(), Event{Kind: CommentEdited})
	if a.n != 1 || b.n != 1 {
		t.Fatalf("expected both notified, got %d %d", a.n, b.n)
	}
}
