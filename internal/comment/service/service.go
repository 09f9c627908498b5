package service

import (
	"context"

	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/thread"
)

type CommentService interface {
	View(ctx context.Context, post string, actor model.Actor) (Thread, error)
	Comment(ctx context.Context, post string, actor model.Actor, message string) (Thread, error)
	Reply(ctx context.Context, post string, actor model.Actor, parentID, message string) (Thread, error)
	Edit(ctx context.Context, post string, actor model.Actor, id, message string) (Thread, error)
	Delete(ctx context.Context, post string, actor model.Actor, id string, hard bool) (Thread, error)

	ToggleCollapse(ctx context.Context, post string, actor model.Actor, id string) (Thread, error)
	CollapseAll(ctx context.Context, post string, actor model.Actor) (Thread, error)
	ExpandAll(ctx context.Context, post string, actor model.Actor) (Thread, error)
	ExpandReplies(ctx context.Context, post string, actor model.Actor, id string) (Thread, error)
	ShrinkReplies(ctx context.Context, post string, actor model.Actor, id string) (Thread, error)

	Search(ctx context.Context, post, q string) (model.SearchPage, error)
	GetPath(ctx context.Context, post, id string) ([]model.PathItem, error)

	Stats() Stats
	Ping(ctx context.Context) error
}

// Thread is a post's comments as seen by one actor.
type Thread struct {
	Post      string            `json:"post"`
	Total     int               `json:"total"`
	Items     []thread.ViewNode `json:"items"`
	CreatedID string            `json:"createdId,omitempty"`
}

type Stats struct {
	Sessions      int   `json:"sessions"`
	WriteFailures int64 `json:"writeFailures"`
}
