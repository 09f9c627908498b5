package thread

import (
	"testing"

	"github.com/levelupgamer/commenttree/internal/comment/model"
)

func TestAddCommentPrepends(t *testing.T) {
	e := testEngine()
	old := node("old")
	tree := model.Tree{old}

	out, n := e.AddComment(tree, user, "hola")
	if len(out) != 2 || out[0] != n || out[1] != old {
		t.Fatalf("expected new node first and old node kept, got %+v", out)
	}
	if n.ID != "gen-1" || n.Name != "Ana" || n.Email != "ana@levelup.cl" {
		t.Fatalf("unexpected node identity: %+v", n)
	}
	if n.Date != "2024-05-01T12:30:00.000Z" {
		t.Fatalf("unexpected date %q", n.Date)
	}
	if n.Replies == nil || len(n.Replies) != 0 {
		t.Fatalf("expected empty non-nil replies")
	}
	if len(tree) != 1 {
		t.Fatalf("input tree mutated")
	}
}

func TestAddCommentDefaultsAuthorName(t *testing.T) {
	e := testEngine()
	_, n := e.AddComment(nil, model.Actor{Email: "x@y.z"}, "hi")
	if n.Name != model.DefaultName {
		t.Fatalf("expected default name, got %q", n.Name)
	}
}

func TestAddReplyNested(t *testing.T) {
	e := testEngine()
	b := node("b")
	a := node("a", b)
	sibling := node("s")
	tree := model.Tree{a, sibling}

	out, reply := e.AddReply(tree, "b", user, "hi")
	if reply == nil {
		t.Fatal("expected reply to be created")
	}
	gotB := out[0].Replies[0]
	if len(gotB.Replies) != 1 || gotB.Replies[0].Message != "hi" {
		t.Fatalf("expected reply under b, got %+v", gotB.Replies)
	}
	if out[0] == a {
		t.Fatal("expected a to be reallocated on the path")
	}
	if gotB == b {
		t.Fatal("expected b to be reallocated")
	}
	if out[1] != sibling {
		t.Fatal("expected untouched sibling to keep its reference")
	}
	if len(b.Replies) != 0 {
		t.Fatal("original b mutated")
	}
}

func TestAddReplyPrependsNewestFirst(t *testing.T) {
	e := testEngine()
	tree := model.Tree{node("a", node("older"))}

	out, _ := e.AddReply(tree, "a", user, "newest")
	if out[0].Replies[0].Message != "newest" || out[0].Replies[1].ID != "older" {
		t.Fatalf("expected newest reply first, got %+v", out[0].Replies)
	}
}

func TestMissingTargetReturnsSameTree(t *testing.T) {
	e := testEngine()
	tree := model.Tree{node("a", node("b"))}

	out, reply := e.AddReply(tree, "zzz", user, "hi")
	if reply != nil || &out[0] != &tree[0] {
		t.Fatal("AddReply on missing id should return the identical tree")
	}

	out, ok := e.Edit(tree, "zzz", "x")
	if ok || &out[0] != &tree[0] {
		t.Fatal("Edit on missing id should return the identical tree")
	}

	out, res := e.Delete(tree, "zzz", model.Capability{Role: model.RoleAdmin, Hard: true})
	if res != NotFound || &out[0] != &tree[0] {
		t.Fatal("Delete on missing id should return the identical tree")
	}
}

func TestEditDeepSharesUntouchedSubtrees(t *testing.T) {
	e := testEngine()
	c := node("c")
	c2 := node("c2")
	b := node("b", c, c2)
	b2 := node("b2", node("x"))
	a := node("a", b, b2)
	other := node("other", node("y"))
	tree := model.Tree{a, other}

	out, ok := e.Edit(tree, "c", "editado")
	if !ok {
		t.Fatal("expected edit to apply")
	}
	gotC := out[0].Replies[0].Replies[0]
	if gotC.Message != "editado" || !gotC.Edited || gotC.EditedAt != "2024-05-01T12:30:00.000Z" {
		t.Fatalf("unexpected edited node %+v", gotC)
	}
	if out[0] == a || out[0].Replies[0] == b || gotC == c {
		t.Fatal("expected the root-to-target path to be reallocated")
	}
	if out[1] != other {
		t.Fatal("root sibling should keep its reference")
	}
	if out[0].Replies[1] != b2 {
		t.Fatal("sibling subtree on a should keep its reference")
	}
	if out[0].Replies[0].Replies[1] != c2 {
		t.Fatal("sibling of the target should keep its reference")
	}
	if c.Message != "msg-c" || c.Edited {
		t.Fatal("original node mutated")
	}
}

func TestSoftDeletePreservesReplies(t *testing.T) {
	e := testEngine()
	b := node("b")
	a := node("a", b)
	tree := model.Tree{a}

	out, res := e.Delete(tree, "a", model.Capability{Role: model.RoleUser})
	if res != SoftDeleted {
		t.Fatalf("expected soft delete, got %v", res)
	}
	got := out[0]
	if !got.Deleted || got.Message != "[borrado por el usuario]" {
		t.Fatalf("unexpected soft-deleted node %+v", got)
	}
	if len(got.Replies) != 1 || got.Replies[0] != b {
		t.Fatalf("expected replies untouched, got %+v", got.Replies)
	}
	if a.Deleted {
		t.Fatal("original node mutated")
	}
}

func TestSoftDeleteByAdminUsesAdminPlaceholder(t *testing.T) {
	e := testEngine()
	tree := model.Tree{node("a", node("b"))}

	out, res := e.Delete(tree, "a", model.Capability{Role: model.RoleAdmin})
	if res != SoftDeleted || out[0].Message != model.DeletedByAdmin {
		t.Fatalf("expected admin placeholder, got %v %q", res, out[0].Message)
	}
}

func TestLeafDeleteRemovesNode(t *testing.T) {
	for _, capab := range []model.Capability{
		{Role: model.RoleUser},
		{Role: model.RoleAdmin, Hard: true},
	} {
		e := testEngine()
		keep := node("keep")
		tree := model.Tree{node("a", node("leaf"), keep)}

		out, res := e.Delete(tree, "leaf", capab)
		if res != Removed {
			t.Fatalf("capability %+v: expected removal, got %v", capab, res)
		}
		if len(out[0].Replies) != 1 || out[0].Replies[0] != keep {
			t.Fatalf("capability %+v: unexpected replies %+v", capab, out[0].Replies)
		}
	}
}

func TestHardDeleteDropsSubtree(t *testing.T) {
	e := testEngine()
	other := node("other")
	tree := model.Tree{node("a", node("b", node("c"))), other}

	out, res := e.Delete(tree, "a", model.Capability{Role: model.RoleAdmin, Hard: true})
	if res != Removed {
		t.Fatalf("expected removal, got %v", res)
	}
	if len(out) != 1 || out[0] != other {
		t.Fatalf("expected only the sibling to remain, got %+v", out)
	}
	if out.Find("c") != nil {
		t.Fatal("descendants should be gone")
	}
}

func TestLeafTombstonesKeepDeletedLeaves(t *testing.T) {
	e := testEngine(WithLeafTombstones(true))
	tree := model.Tree{node("leaf")}

	out, res := e.Delete(tree, "leaf", model.Capability{Role: model.RoleUser})
	if res != SoftDeleted || len(out) != 1 || !out[0].Deleted {
		t.Fatalf("expected tombstone, got %v %+v", res, out)
	}

	out, res = e.Delete(out, "leaf", model.Capability{Role: model.RoleAdmin, Hard: true})
	if res != Removed || len(out) != 0 {
		t.Fatalf("hard delete should still remove, got %v %+v", res, out)
	}
}

func TestRemovingLastReplyLeavesEmptySlice(t *testing.T) {
	e := testEngine()
	tree := model.Tree{node("a", node("b"))}

	out, _ := e.Delete(tree, "b", model.Capability{Role: model.RoleUser})
	if out[0].Replies == nil || len(out[0].Replies) != 0 {
		t.Fatalf("expected empty non-nil replies, got %#v", out[0].Replies)
	}
}
