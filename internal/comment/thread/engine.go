// Package thread holds the comment thread engine of the storefront's blog:
// resolving where a post's thread is stored, repairing loaded trees, applying
// mutations with structural sharing, and tracking collapse/pagination state.
package thread

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ISOLayout matches JavaScript's Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

type Engine struct {
	now        func() time.Time
	newID      func() string
	tombstones bool
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDs(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithLeafTombstones keeps soft-deleted leaves in the tree as placeholders
// instead of removing them.
func WithLeafTombstones(on bool) Option {
	return func(e *Engine) { e.tombstones = on }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.newID == nil {
		e.newID = func() string { return NewID(e.now()) }
	}
	return e
}

// NewID builds a client-style id: base36 milliseconds plus a random suffix.
func NewID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(at.UnixMilli(), 36) + "-" + suffix
}

func (e *Engine) stamp() string {
	return e.now().UTC().Format(ISOLayout)
}
