package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/levelupgamer/commenttree/internal/comment/notify"
	"github.com/levelupgamer/commenttree/internal/comment/thread"
)

type Option func(*commentService)

func WithEngine(e *thread.Engine) Option {
	return func(s *commentService) { s.engine = e }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *commentService) { s.notifier = n }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *commentService) { s.log = log }
}

// WithLegacyKeys supplies the statically configured legacy aliases of a post.
func WithLegacyKeys(fn func(post string) []string) Option {
	return func(s *commentService) { s.legacy = fn }
}

func WithPageSize(n int) Option {
	return func(s *commentService) { s.pageSize = n }
}

// WithRenderer sets the message-to-HTML renderer used in views.
func WithRenderer(fn func(string) string) Option {
	return func(s *commentService) { s.render = fn }
}

// WithSessionTTL makes a loaded thread re-read from storage once it is older
// than d. Zero keeps loaded threads for the life of the process.
func WithSessionTTL(d time.Duration) Option {
	return func(s *commentService) { s.ttl = d }
}

// WithMaxSessions bounds the number of loaded post threads. The least
// recently used thread is dropped first and re-read from storage on demand.
func WithMaxSessions(n int) Option {
	return func(s *commentService) { s.maxSessions = n }
}
