package thread

import "github.com/levelupgamer/commenttree/internal/comment/model"

// DeleteResult tells how a delete was applied.
type DeleteResult int

const (
	NotFound DeleteResult = iota
	Removed
	SoftDeleted
)

func (r DeleteResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case SoftDeleted:
		return "soft_deleted"
	default:
		return "not_found"
	}
}

// AddComment prepends a top-level comment. The message is expected to be
// trimmed and non-empty, and the author authenticated.
func (e *Engine) AddComment(tree model.Tree, author model.Actor, message string) (model.Tree, *model.CommentNode) {
	n := e.newNode(author, message)
	return prepend(tree, n), n
}

// AddReply prepends a reply to the node with parentID. When no node matches,
// the same tree comes back with a nil node.
func (e *Engine) AddReply(tree model.Tree, parentID string, author model.Actor, message string) (model.Tree, *model.CommentNode) {
	var reply *model.CommentNode
	out, ok := update(tree, parentID, func(n *model.CommentNode) *model.CommentNode {
		reply = e.newNode(author, message)
		cp := *n
		cp.Replies = prepend(n.Replies, reply)
		return &cp
	})
	if !ok {
		return tree, nil
	}
	return out, reply
}

// Edit replaces the message of the node with id and marks it edited.
func (e *Engine) Edit(tree model.Tree, id, message string) (model.Tree, bool) {
	out, ok := update(tree, id, func(n *model.CommentNode) *model.CommentNode {
		cp := *n
		cp.Message = message
		cp.Edited = true
		cp.EditedAt = e.stamp()
		return &cp
	})
	if !ok {
		return tree, false
	}
	return out, true
}

// Delete removes the node with id, or blanks it when it must stay to keep its
// replies reachable. Hard deletes and leaves are removed; everything else gets
// the placeholder chosen by the capability's role. Permission to delete is not
// checked here.
func (e *Engine) Delete(tree model.Tree, id string, capab model.Capability) (model.Tree, DeleteResult) {
	out, res := e.remove(tree, id, capab)
	if res == NotFound {
		return tree, NotFound
	}
	return out, res
}

func (e *Engine) remove(list []*model.CommentNode, id string, capab model.Capability) ([]*model.CommentNode, DeleteResult) {
	for i, n := range list {
		if n.ID == id {
			if capab.Hard || (len(n.Replies) == 0 && !e.tombstones) {
				return without(list, i), Removed
			}
			cp := *n
			cp.Deleted = true
			cp.Message = capab.Placeholder()
			return replaceAt(list, i, &cp), SoftDeleted
		}
		if replies, res := e.remove(n.Replies, id, capab); res != NotFound {
			cp := *n
			cp.Replies = replies
			return replaceAt(list, i, &cp), res
		}
	}
	return list, NotFound
}

func (e *Engine) newNode(author model.Actor, message string) *model.CommentNode {
	name := author.Name
	if name == "" {
		name = model.DefaultName
	}
	return &model.CommentNode{
		ID:      e.newID(),
		Name:    name,
		Email:   author.Email,
		Message: message,
		Date:    e.stamp(),
		Replies: []*model.CommentNode{},
	}
}

// update rebuilds only the path from the root to the node with id.
func update(list []*model.CommentNode, id string, fn func(*model.CommentNode) *model.CommentNode) ([]*model.CommentNode, bool) {
	for i, n := range list {
		if n.ID == id {
			return replaceAt(list, i, fn(n)), true
		}
		if replies, ok := update(n.Replies, id, fn); ok {
			cp := *n
			cp.Replies = replies
			return replaceAt(list, i, &cp), true
		}
	}
	return list, false
}

func prepend(list []*model.CommentNode, n *model.CommentNode) []*model.CommentNode {
	out := make([]*model.CommentNode, 0, len(list)+1)
	out = append(out, n)
	return append(out, list...)
}

func replaceAt(list []*model.CommentNode, i int, n *model.CommentNode) []*model.CommentNode {
	out := make([]*model.CommentNode, len(list))
	copy(out, list)
	out[i] = n
	return out
}

func without(list []*model.CommentNode, i int) []*model.CommentNode {
	out := make([]*model.CommentNode, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
