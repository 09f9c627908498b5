package thread

import (
	"strings"
	"unicode/utf8"

	"github.com/levelupgamer/commenttree/internal/comment/model"
)

const snippetRunes = 80

// Search finds live comments whose message contains q, case-insensitively,
// in display order.
func Search(tree model.Tree, q string) model.SearchPage {
	q = strings.ToLower(strings.TrimSpace(q))
	page := model.SearchPage{Items: []model.SearchItem{}}
	if q == "" {
		return page
	}

	var walk func(list []*model.CommentNode, depth int)
	walk = func(list []*model.CommentNode, depth int) {
		for _, n := range list {
			if !n.Deleted {
				if idx := strings.Index(strings.ToLower(n.Message), q); idx >= 0 {
					page.Items = append(page.Items, model.SearchItem{
						ID:      n.ID,
						Name:    n.Name,
						Snippet: snippet(n.Message, idx),
						Date:    n.Date,
						Depth:   depth,
					})
				}
			}
			walk(n.Replies, depth+1)
		}
	}
	walk(tree, 0)

	page.Total = len(page.Items)
	return page
}

// snippet cuts about snippetRunes runes around byte offset idx.
func snippet(msg string, idx int) string {
	if utf8.RuneCountInString(msg) <= snippetRunes {
		return msg
	}
	runes := []rune(msg)
	at := utf8.RuneCountInString(msg[:min(idx, len(msg))])
	start := max(at-snippetRunes/4, 0)
	end := min(start+snippetRunes, len(runes))

	s := string(runes[start:end])
	if start > 0 {
		s = "…" + s
	}
	if end < len(runes) {
		s += "…"
	}
	return s
}

// PathTo returns the chain of nodes from a root comment down to id, or nil
// when id is not in the tree.
func PathTo(tree model.Tree, id string) []model.PathItem {
	for _, n := range tree {
		if n.ID == id {
			return []model.PathItem{pathItem(n)}
		}
		if rest := PathTo(n.Replies, id); rest != nil {
			return append([]model.PathItem{pathItem(n)}, rest...)
		}
	}
	return nil
}

func pathItem(n *model.CommentNode) model.PathItem {
	return model.PathItem{ID: n.ID, Name: n.Name, Message: n.Message}
}
