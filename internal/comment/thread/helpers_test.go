package thread

import (
	"fmt"
	"time"

	"github.com/levelupgamer/commenttree/internal/comment/model"
)

var fixedNow = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func testEngine(opts ...Option) *Engine {
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	}
	return New(append(base, opts...)...)
}

func node(id string, replies ...*model.CommentNode) *model.CommentNode {
	if replies == nil {
		replies = []*model.CommentNode{}
	}
	return &model.CommentNode{
		ID:      id,
		Name:    "name-" + id,
		Email:   id + "@levelup.cl",
		Message: "msg-" + id,
		Date:    "2024-01-01T00:00:00.000Z",
		Replies: replies,
	}
}

var (
	user  = model.Actor{Name: "Ana", Email: "ana@levelup.cl", Role: model.RoleUser}
	admin = model.Actor{Name: "Root", Email: "admin@levelup.cl", Role: model.RoleAdmin}
)
