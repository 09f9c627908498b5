package model

const (
	DefaultName = "Anónimo"

	DeletedByUser  = "[borrado por el usuario]"
	DeletedByAdmin = "[borrado por el administrador]"
)

// CommentNode is a single comment or reply as persisted under a post's key.
type CommentNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Message  string         `json:"message"`
	Date     string         `json:"date"`
	Replies  []*CommentNode `json:"replies"`
	Edited   bool           `json:"edited"`
	EditedAt string         `json:"editedAt,omitempty"`
	Deleted  bool           `json:"deleted"`
}

// Tree is the ordered root sequence of a post's thread, newest first.
type Tree []*CommentNode

// Walk visits every node depth-first in stored order.
func (t Tree) Walk(fn func(n *CommentNode)) {
	for _, n := range t {
		fn(n)
		Tree(n.Replies).Walk(fn)
	}
}

// Find returns the node with the given id, or nil.
func (t Tree) Find(id string) *CommentNode {
	for _, n := range t {
		if n.ID == id {
			return n
		}
		if found := Tree(n.Replies).Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Count returns the number of nodes in the tree.
func (t Tree) Count() int {
	total := 0
	for _, n := range t {
		total += 1 + Tree(n.Replies).Count()
	}
	return total
}

// Descendants returns the number of nodes below n.
func (n *CommentNode) Descendants() int {
	return Tree(n.Replies).Count()
}
