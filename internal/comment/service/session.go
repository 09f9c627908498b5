package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/notify"
	"github.com/levelupgamer/commenttree/internal/comment/thread"
)

// session is the in-memory copy of one post's thread. Writes back to storage
// are refused until the initial read has finished, so an empty starting
// state can never overwrite data left by older builds.
type session struct {
	mu sync.Mutex

	keys     thread.Keys
	tree     model.Tree
	state    *thread.State
	loaded   *atomic.Bool
	loadedAt time.Time
}

func newSession(keys thread.Keys) *session {
	return &session{
		keys:   keys,
		tree:   model.Tree{},
		state:  thread.NewState(),
		loaded: atomic.NewBool(false),
	}
}

func (s *commentService) sessionFor(post string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(post)
	if !ok {
		var legacy []string
		if s.legacy != nil {
			legacy = s.legacy(post)
		}
		sess = newSession(thread.NewKeys(post, legacy))
		s.sessions.Add(post, sess)
	}
	return sess
}

// withSession runs fn with the post's session locked and loaded.
func (s *commentService) withSession(ctx context.Context, post string, fn func(sess *session) error) error {
	post, err := cleanPost(post)
	if err != nil {
		return err
	}

	sess := s.sessionFor(post)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.loaded.Load() || (s.ttl > 0 && s.now().Sub(sess.loadedAt) > s.ttl) {
		if err := s.load(ctx, sess); err != nil {
			return err
		}
	}
	return fn(sess)
}

func (s *commentService) load(ctx context.Context, sess *session) error {
	sess.loaded.Store(false)

	var (
		treeRes      thread.Resolution[[]any]
		collapsedRes thread.Resolution[model.Flags]
		slicesRes    thread.Resolution[model.Flags]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		treeRes = s.resolver.Tree(gctx, sess.keys)
		return gctx.Err()
	})
	g.Go(func() error {
		collapsedRes = s.resolver.Flags(gctx, sess.keys.Collapsed())
		return gctx.Err()
	})
	g.Go(func() error {
		slicesRes = s.resolver.Flags(gctx, sess.keys.SliceExpanded())
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	tree, repaired := s.engine.Normalize(treeRes.Value)
	sess.tree = tree
	sess.state = &thread.State{
		Collapsed:     collapsedRes.Value,
		SliceExpanded: slicesRes.Value,
	}
	sess.loadedAt = s.now()
	sess.loaded.Store(true)

	s.log.Debug().
		Str("post", sess.keys.Post).
		Str("source", treeRes.Source).
		Str("first_valid", treeRes.FirstValid).
		Int("comments", tree.Count()).
		Bool("repaired", repaired).
		Msg("thread loaded")

	// Converge every candidate onto the resolved content.
	if treeRes.Found {
		s.persistTree(ctx, sess)
	}
	if collapsedRes.Found {
		s.persistFlags(ctx, sess, sess.keys.Collapsed(), sess.state.Collapsed)
	}
	if slicesRes.Found {
		s.persistFlags(ctx, sess, sess.keys.SliceExpanded(), sess.state.SliceExpanded)
	}
	return nil
}

func (s *commentService) persistTree(ctx context.Context, sess *session) {
	if !sess.loaded.Load() {
		return
	}
	if err := s.resolver.Persist(ctx, sess.keys, sess.tree); err != nil {
		s.writeFailed(ctx, sess, err)
	}
}

func (s *commentService) persistState(ctx context.Context, sess *session) {
	s.persistFlags(ctx, sess, sess.keys.Collapsed(), sess.state.Collapsed)
	s.persistFlags(ctx, sess, sess.keys.SliceExpanded(), sess.state.SliceExpanded)
}

func (s *commentService) persistFlags(ctx context.Context, sess *session, keys thread.Keys, flags model.Flags) {
	if !sess.loaded.Load() {
		return
	}
	if err := s.resolver.Persist(ctx, keys, flags); err != nil {
		s.writeFailed(ctx, sess, err)
	}
}

// writeFailed records a storage write error. The in-memory state stays as
// is; the next mutation writes the full state again.
func (s *commentService) writeFailed(ctx context.Context, sess *session, err error) {
	s.failures.Inc()
	s.log.Warn().Err(err).Str("post", sess.keys.Post).Msg("comment storage write failed")
	s.notifier.Notify(ctx, notify.Event{
		Kind:   notify.Failed,
		Post:   sess.keys.Post,
		Detail: "no se pudieron guardar los comentarios",
		At:     s.now(),
	})
}
