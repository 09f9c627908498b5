package thread

import "github.com/levelupgamer/commenttree/internal/comment/model"

// Normalize turns loosely typed stored items into a well-formed tree.
// changed reports whether anything had to be defaulted, dropped or coerced,
// which tells the caller the stored form is worth rewriting.
func (e *Engine) Normalize(items []any) (tree model.Tree, changed bool) {
	tree = make(model.Tree, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			changed = true
			continue
		}
		n, c := e.normalizeNode(m)
		changed = changed || c
		tree = append(tree, n)
	}
	return tree, changed
}

func (e *Engine) normalizeNode(m map[string]any) (*model.CommentNode, bool) {
	changed := false
	n := &model.CommentNode{}

	var exact bool
	if n.ID, exact = str(m["id"]); n.ID == "" {
		n.ID = e.newID()
		changed = true
	} else if !exact {
		changed = true
	}

	if n.Name, exact = str(m["name"]); n.Name == "" {
		n.Name = model.DefaultName
		changed = true
	} else if !exact {
		changed = true
	}

	if n.Email, exact = str(m["email"]); !exact {
		changed = true
	}
	if n.Message, exact = str(m["message"]); !exact {
		changed = true
	}

	if n.Date, exact = str(m["date"]); n.Date == "" {
		n.Date = e.stamp()
		changed = true
	} else if !exact {
		changed = true
	}

	if replies, ok := m["replies"].([]any); ok {
		var c bool
		n.Replies, c = e.Normalize(replies)
		changed = changed || c
	} else {
		n.Replies = model.Tree{}
		changed = true
	}

	if n.Edited, exact = truthy(m["edited"]); !exact {
		changed = true
	}
	if n.Deleted, exact = truthy(m["deleted"]); !exact {
		changed = true
	}

	if raw, present := m["editedAt"]; present {
		if s, ok := raw.(string); ok && s != "" {
			n.EditedAt = s
		} else {
			changed = true
		}
	}

	return n, changed
}
