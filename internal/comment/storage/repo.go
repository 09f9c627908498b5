package storage

import "context"

// KV is a string-keyed store with localStorage semantics: values are opaque
// strings and a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by media that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Unavailable stands in when no storage medium exists. Reads find nothing and
// writes are dropped.
type Unavailable struct{}

func (Unavailable) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (Unavailable) Set(ctx context.Context, key, value string) error {
	return nil
}

func (Unavailable) Remove(ctx context.Context, key string) error {
	return nil
}
