package thread

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/storage"
)

// Resolution is the authoritative source picked among a post's candidate keys.
type Resolution[T any] struct {
	Value T
	// Source is the key whose content was adopted.
	Source string
	// FirstValid is the first candidate that parsed at all, empty or not.
	FirstValid string
	// Found is false when no candidate held a parseable payload.
	Found bool
}

// Resolver reads and writes thread payloads through a storage medium.
type Resolver struct {
	kv  storage.KV
	log zerolog.Logger
}

func NewResolver(kv storage.KV, log zerolog.Logger) *Resolver {
	if kv == nil {
		kv = storage.Unavailable{}
	}
	return &Resolver{kv: kv, log: log}
}

// Tree resolves the comment list of a post.
func (r *Resolver) Tree(ctx context.Context, keys Keys) Resolution[[]any] {
	res := resolve(ctx, r, keys.Candidates, parseTree)
	if res.Value == nil {
		res.Value = []any{}
	}
	return res
}

// Flags resolves one of the per-node boolean maps.
func (r *Resolver) Flags(ctx context.Context, keys Keys) Resolution[model.Flags] {
	res := resolve(ctx, r, keys.Candidates, parseFlags)
	if res.Value == nil {
		res.Value = model.Flags{}
	}
	return res
}

// resolve walks candidates in order. The first parseable payload is kept as
// a fallback; the first non-empty one wins outright.
func resolve[T any](ctx context.Context, r *Resolver, candidates []string, parse func(string) payload[T]) Resolution[T] {
	var res Resolution[T]
	for _, key := range candidates {
		raw, ok, err := r.kv.Get(ctx, key)
		if err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("comment storage read failed, skipping candidate")
			continue
		}
		if !ok {
			continue
		}

		p := parse(raw)
		if !p.ok {
			r.log.Warn().Str("key", key).Str("reason", p.reason).Msg("ignoring unreadable comment payload")
			continue
		}

		if !res.Found {
			res.Found = true
			res.FirstValid = key
			res.Source = key
			res.Value = p.value
		}
		if p.size > 0 {
			res.Source = key
			res.Value = p.value
			return res
		}
	}
	return res
}

// Persist writes v as JSON to every target key. Failures on individual keys
// do not stop the remaining writes; they come back combined.
func (r *Resolver) Persist(ctx context.Context, keys Keys, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", keys.Canonical, err)
	}

	var errs error
	for _, key := range keys.Targets() {
		if err := r.kv.Set(ctx, key, string(data)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", key, err))
		}
	}
	return errs
}
