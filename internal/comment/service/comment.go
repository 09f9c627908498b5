package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/notify"
	"github.com/levelupgamer/commenttree/internal/comment/storage"
	"github.com/levelupgamer/commenttree/internal/comment/thread"
)

const maxMessageRunes = 2000

// DefaultMaxSessions bounds how many post threads stay loaded in memory.
const DefaultMaxSessions = 1024

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type commentService struct {
	engine   *thread.Engine
	resolver *thread.Resolver
	notifier notify.Notifier
	log      zerolog.Logger

	legacy   func(post string) []string
	pageSize int
	render   func(string) string
	ttl      time.Duration
	now      func() time.Time

	kv          storage.KV
	maxSessions int
	mu          sync.Mutex
	sessions    *lru.Cache[string, *session]
	failures    *atomic.Int64
}

// New builds a service over kv. A nil kv behaves as a missing storage
// medium: threads start empty and nothing is written.
func New(kv storage.KV, opts ...Option) CommentService {
	s := &commentService{
		engine:      thread.New(),
		notifier:    notify.Nop{},
		log:         zerolog.Nop(),
		pageSize:    thread.DefaultPageSize,
		now:         time.Now,
		kv:          kv,
		maxSessions: DefaultMaxSessions,
		failures:    atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxSessions <= 0 {
		s.maxSessions = DefaultMaxSessions
	}
	// lru.New only fails for a non-positive size.
	s.sessions, _ = lru.New[string, *session](s.maxSessions)
	s.resolver = thread.NewResolver(kv, s.log)
	return s
}

func (s *commentService) View(ctx context.Context, post string, actor model.Actor) (Thread, error) {
	var out Thread
	err := s.withSession(ctx, post, func(sess *session) error {
		out = s.snapshot(sess, actor, "")
		return nil
	})
	return out, err
}

func (s *commentService) Comment(ctx context.Context, post string, actor model.Actor, message string) (Thread, error) {
	if !actor.Authenticated() {
		return Thread{}, ErrUnauthenticated
	}
	msg, err := cleanMessage(message)
	if err != nil {
		return Thread{}, err
	}

	var out Thread
	err = s.withSession(ctx, post, func(sess *session) error {
		tree, created := s.engine.AddComment(sess.tree, actor, msg)
		sess.tree = tree
		s.persistTree(ctx, sess)
		s.emit(ctx, sess, notify.CommentPosted, actor, created.ID, "comentario publicado")
		out = s.snapshot(sess, actor, created.ID)
		return nil
	})
	return out, err
}

func (s *commentService) Reply(ctx context.Context, post string, actor model.Actor, parentID, message string) (Thread, error) {
	if !actor.Authenticated() {
		return Thread{}, ErrUnauthenticated
	}
	msg, err := cleanMessage(message)
	if err != nil {
		return Thread{}, err
	}

	var out Thread
	err = s.withSession(ctx, post, func(sess *session) error {
		parent := sess.tree.Find(parentID)
		if parent == nil {
			out = s.snapshot(sess, actor, "")
			return nil
		}
		if parent.Deleted {
			return ErrForbidden
		}

		tree, created := s.engine.AddReply(sess.tree, parentID, actor, msg)
		sess.tree = tree
		s.persistTree(ctx, sess)
		s.emit(ctx, sess, notify.ReplyPosted, actor, created.ID, "respuesta publicada")
		out = s.snapshot(sess, actor, created.ID)
		return nil
	})
	return out, err
}

func (s *commentService) Edit(ctx context.Context, post string, actor model.Actor, id, message string) (Thread, error) {
	if !actor.Authenticated() {
		return Thread{}, ErrUnauthenticated
	}
	msg, err := cleanMessage(message)
	if err != nil {
		return Thread{}, err
	}

	var out Thread
	err = s.withSession(ctx, post, func(sess *session) error {
		target := sess.tree.Find(id)
		if target == nil {
			out = s.snapshot(sess, actor, "")
			return nil
		}
		if target.Deleted || !actor.CanModify(target) {
			return ErrForbidden
		}

		if tree, ok := s.engine.Edit(sess.tree, id, msg); ok {
			sess.tree = tree
			s.persistTree(ctx, sess)
			s.emit(ctx, sess, notify.CommentEdited, actor, id, "comentario editado")
		}
		out = s.snapshot(sess, actor, "")
		return nil
	})
	return out, err
}

func (s *commentService) Delete(ctx context.Context, post string, actor model.Actor, id string, hard bool) (Thread, error) {
	if !actor.Authenticated() {
		return Thread{}, ErrUnauthenticated
	}
	if hard && !actor.IsAdmin() {
		return Thread{}, ErrForbidden
	}

	var out Thread
	err := s.withSession(ctx, post, func(sess *session) error {
		target := sess.tree.Find(id)
		if target == nil {
			out = s.snapshot(sess, actor, "")
			return nil
		}
		if !actor.CanModify(target) || (target.Deleted && !hard) {
			return ErrForbidden
		}

		tree, res := s.engine.Delete(sess.tree, id, model.Capability{Role: actor.Role, Hard: hard})
		sess.tree = tree
		s.persistTree(ctx, sess)
		if res == thread.Removed && sess.state.Prune(sess.tree) {
			s.persistState(ctx, sess)
		}
		s.emit(ctx, sess, notify.CommentDeleted, actor, id, res.String())
		out = s.snapshot(sess, actor, "")
		return nil
	})
	return out, err
}

func (s *commentService) ToggleCollapse(ctx context.Context, post string, actor model.Actor, id string) (Thread, error) {
	return s.changeState(ctx, post, actor, func(sess *session) bool {
		if sess.tree.Find(id) == nil {
			return false
		}
		return sess.state.ToggleCollapse(id)
	})
}

func (s *commentService) CollapseAll(ctx context.Context, post string, actor model.Actor) (Thread, error) {
	return s.changeState(ctx, post, actor, func(sess *session) bool {
		return sess.state.CollapseAll(sess.tree)
	})
}

func (s *commentService) ExpandAll(ctx context.Context, post string, actor model.Actor) (Thread, error) {
	return s.changeState(ctx, post, actor, func(sess *session) bool {
		return sess.state.ExpandAll()
	})
}

func (s *commentService) ExpandReplies(ctx context.Context, post string, actor model.Actor, id string) (Thread, error) {
	return s.changeState(ctx, post, actor, func(sess *session) bool {
		if sess.tree.Find(id) == nil {
			return false
		}
		return sess.state.ExpandReplySlice(id)
	})
}

func (s *commentService) ShrinkReplies(ctx context.Context, post string, actor model.Actor, id string) (Thread, error) {
	return s.changeState(ctx, post, actor, func(sess *session) bool {
		return sess.state.ShrinkReplySlice(id)
	})
}

func (s *commentService) Search(ctx context.Context, post, q string) (model.SearchPage, error) {
	if strings.TrimSpace(q) == "" {
		return model.SearchPage{}, ErrInvalidInput
	}
	var page model.SearchPage
	err := s.withSession(ctx, post, func(sess *session) error {
		page = thread.Search(sess.tree, q)
		return nil
	})
	return page, err
}

func (s *commentService) GetPath(ctx context.Context, post, id string) ([]model.PathItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	var items []model.PathItem
	err := s.withSession(ctx, post, func(sess *session) error {
		items = thread.PathTo(sess.tree, id)
		if items == nil {
			return ErrNotFound
		}
		return nil
	})
	return items, err
}

func (s *commentService) Stats() Stats {
	return Stats{Sessions: s.sessions.Len(), WriteFailures: s.failures.Load()}
}

// Ping reports whether the storage medium is reachable. Media without a
// health check always pass.
func (s *commentService) Ping(ctx context.Context) error {
	if p, ok := s.kv.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *commentService) changeState(ctx context.Context, post string, actor model.Actor, fn func(sess *session) bool) (Thread, error) {
	var out Thread
	err := s.withSession(ctx, post, func(sess *session) error {
		if fn(sess) {
			s.persistState(ctx, sess)
		}
		out = s.snapshot(sess, actor, "")
		return nil
	})
	return out, err
}

func (s *commentService) snapshot(sess *session, actor model.Actor, createdID string) Thread {
	return Thread{
		Post:      sess.keys.Post,
		Total:     sess.tree.Count(),
		Items:     thread.Project(sess.tree, sess.state, actor, thread.ViewOptions{PageSize: s.pageSize, Render: s.render}),
		CreatedID: createdID,
	}
}

func (s *commentService) emit(ctx context.Context, sess *session, kind notify.Kind, actor model.Actor, id, detail string) {
	s.notifier.Notify(ctx, notify.Event{
		Kind:   kind,
		Post:   sess.keys.Post,
		NodeID: id,
		Actor:  actor.Email,
		Detail: detail,
		At:     s.now(),
	})
}

func cleanMessage(message string) (string, error) {
	msg := strings.TrimSpace(message)
	if msg == "" || utf8.RuneCountInString(msg) > maxMessageRunes {
		return "", ErrInvalidInput
	}
	return msg, nil
}

func cleanPost(post string) (string, error) {
	post = strings.TrimSpace(post)
	if post == "" {
		return "", ErrInvalidInput
	}
	return post, nil
}
