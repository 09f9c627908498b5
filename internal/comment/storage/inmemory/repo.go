package inmemory

import (
	"context"
	"sync"
)

type Repo struct {
	mu sync.RWMutex

	values map[string]string
}

func New() *Repo {
	return &Repo{
		values: make(map[string]string),
	}
}

func (r *Repo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *Repo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

func (r *Repo) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
