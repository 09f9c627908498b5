package thread

import "github.com/levelupgamer/commenttree/internal/comment/model"

// DefaultPageSize is how many replies a node shows before "show N more".
const DefaultPageSize = 5

// ViewNode is a node as it should be displayed to a given actor.
type ViewNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Message  string `json:"message,omitempty"`
	HTML     string `json:"html,omitempty"`
	Date     string `json:"date"`
	Edited   bool   `json:"edited"`
	EditedAt string `json:"editedAt,omitempty"`
	Deleted  bool   `json:"deleted"`

	Collapsed       bool `json:"collapsed"`
	DescendantCount int  `json:"descendantCount"`

	Replies       []ViewNode `json:"replies"`
	HiddenReplies int        `json:"hiddenReplies"`
	SliceExpanded bool       `json:"sliceExpanded"`

	CanReply  bool `json:"canReply"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

type ViewOptions struct {
	PageSize int
	// Render converts a message body to HTML. Nil leaves HTML empty.
	Render func(string) string
}

// Project applies collapse and pagination state to tree for actor.
func Project(tree model.Tree, st *State, actor model.Actor, opts ViewOptions) []ViewNode {
	if st == nil {
		st = NewState()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	out := make([]ViewNode, 0, len(tree))
	for _, n := range tree {
		out = append(out, project(n, st, actor, opts))
	}
	return out
}

func project(n *model.CommentNode, st *State, actor model.Actor, opts ViewOptions) ViewNode {
	v := ViewNode{
		ID:              n.ID,
		Name:            n.Name,
		Email:           n.Email,
		Date:            n.Date,
		Edited:          n.Edited,
		EditedAt:        n.EditedAt,
		Deleted:         n.Deleted,
		DescendantCount: n.Descendants(),
		Replies:         []ViewNode{},
	}

	if !n.Deleted {
		v.CanReply = actor.Authenticated()
		v.CanEdit = actor.CanModify(n)
		v.CanDelete = v.CanEdit
	}

	if st.IsCollapsed(n.ID) {
		v.Collapsed = true
		return v
	}

	v.Message = n.Message
	if opts.Render != nil && !n.Deleted {
		v.HTML = opts.Render(n.Message)
	}

	replies := n.Replies
	v.SliceExpanded = st.IsSliceExpanded(n.ID)
	if !v.SliceExpanded && len(replies) > opts.PageSize {
		v.HiddenReplies = len(replies) - opts.PageSize
		replies = replies[:opts.PageSize]
	}
	for _, r := range replies {
		v.Replies = append(v.Replies, project(r, st, actor, opts))
	}
	return v
}
