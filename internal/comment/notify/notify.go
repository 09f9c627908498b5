// Package notify delivers advisory events about thread activity. Delivery is
// best effort and never influences the operation that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Kind string

const (
	CommentPosted  Kind = "comment_posted"
	ReplyPosted    Kind = "reply_posted"
	CommentEdited  Kind = "comment_edited"
	CommentDeleted Kind = "comment_deleted"
	Failed         Kind = "failed"
)

type Event struct {
	Kind   Kind      `json:"kind"`
	Post   string    `json:"post"`
	NodeID string    `json:"nodeId,omitempty"`
	Actor  string    `json:"actor,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Log writes events to a logger; failures at warn level, the rest at info.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(_ context.Context, ev Event) {
	e := l.log.Info()
	if ev.Kind == Failed {
		e = l.log.Warn()
	}
	e.Str("kind", string(ev.Kind)).
		Str("post", ev.Post).
		Str("node", ev.NodeID).
		Str("actor", ev.Actor).
		Str("detail", ev.Detail).
		Msg("thread event")
}

// Redis publishes events as JSON on a pub/sub channel so storefront frontends
// can show toasts.
type Redis struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedis(client *redis.Client, channel string, log zerolog.Logger) *Redis {
	return &Redis{client: client, channel: channel, log: log}
}

func (r *Redis) Notify(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Warn().Err(err).Msg("marshal thread event")
		return
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.Warn().Err(err).Str("channel", r.channel).Msg("publish thread event failed")
	}
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}
