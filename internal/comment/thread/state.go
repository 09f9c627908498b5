package thread

import "github.com/levelupgamer/commenttree/internal/comment/model"

// State is the per-post visibility state: which nodes are collapsed and which
// show all of their replies instead of the first page.
type State struct {
	Collapsed     model.Flags
	SliceExpanded model.Flags
}

func NewState() *State {
	return &State{
		Collapsed:     model.Flags{},
		SliceExpanded: model.Flags{},
	}
}

func (s *State) IsCollapsed(id string) bool {
	return s.Collapsed.Has(id)
}

func (s *State) IsSliceExpanded(id string) bool {
	return s.SliceExpanded.Has(id)
}

// ToggleCollapse flips the collapse flag of id. Either way the node's reply
// page is reset, so it reopens showing the first page only.
func (s *State) ToggleCollapse(id string) bool {
	if s.Collapsed[id] {
		delete(s.Collapsed, id)
	} else {
		s.Collapsed[id] = true
	}
	delete(s.SliceExpanded, id)
	return true
}

// CollapseAll marks every node of tree collapsed.
func (s *State) CollapseAll(tree model.Tree) bool {
	changed := false
	tree.Walk(func(n *model.CommentNode) {
		if !s.Collapsed[n.ID] {
			s.Collapsed[n.ID] = true
			changed = true
		}
	})
	return changed
}

func (s *State) ExpandAll() bool {
	if len(s.Collapsed) == 0 {
		return false
	}
	s.Collapsed = model.Flags{}
	return true
}

func (s *State) ExpandReplySlice(id string) bool {
	if s.SliceExpanded[id] {
		return false
	}
	s.SliceExpanded[id] = true
	return true
}

func (s *State) ShrinkReplySlice(id string) bool {
	if !s.SliceExpanded[id] {
		return false
	}
	delete(s.SliceExpanded, id)
	return true
}

// Prune drops flags of ids no longer present in tree.
func (s *State) Prune(tree model.Tree) bool {
	live := make(map[string]struct{}, tree.Count())
	tree.Walk(func(n *model.CommentNode) { live[n.ID] = struct{}{} })

	changed := false
	for _, flags := range []model.Flags{s.Collapsed, s.SliceExpanded} {
		for id := range flags {
			if _, ok := live[id]; !ok {
				delete(flags, id)
				changed = true
			}
		}
	}
	return changed
}
