package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	handler "github.com/levelupgamer/commenttree/internal/comment/handler/http"
	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/service"
	"github.com/levelupgamer/commenttree/internal/comment/storage"
	inm "github.com/levelupgamer/commenttree/internal/comment/storage/inmemory"
)

var secret = []byte("test-secret")

func newServer() *httptest.Server {
	return newServerWith(inm.New())
}

func newServerWith(kv storage.KV) *httptest.Server {
	svc := service.New(kv)
	h := handler.New(svc, secret, zerolog.Nop())
	return httptest.NewServer(h.Routes())
}

func token(t *testing.T, a model.Actor) string {
	t.Helper()
	tok, err := handler.IssueToken(secret, a, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func do(t *testing.T, method, url, tok string, body any) (*http.Response, service.Thread) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	var th service.Thread
	if res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(&th); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res, th
}

func TestCommentLifecycle(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	alice := token(t, model.Actor{Name: "Alice", Email: "alice@levelup.cl"})
	base := srv.URL + "/posts/p1/comments"

	res, th := do(t, http.MethodPost, base, alice, map[string]any{"message": "root"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 created, got %d", res.StatusCode)
	}
	rootID := th.CreatedID
	if rootID == "" || th.Total != 1 || th.Items[0].Name != "Alice" {
		t.Fatalf("unexpected thread: %+v", th)
	}

	res, th = do(t, http.MethodPost, base+"/"+rootID+"/replies", alice, map[string]any{"message": "child"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for reply, got %d", res.StatusCode)
	}
	if len(th.Items[0].Replies) != 1 {
		t.Fatalf("expected one reply, got %+v", th.Items[0])
	}

	res, th = do(t, http.MethodPatch, base+"/"+rootID, alice, map[string]any{"message": "root v2"})
	if res.StatusCode != http.StatusOK || !th.Items[0].Edited {
		t.Fatalf("edit failed: %d %+v", res.StatusCode, th.Items[0])
	}

	res, th = do(t, http.MethodDelete, base+"/"+rootID, alice, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", res.StatusCode)
	}
	if !th.Items[0].Deleted || th.Items[0].Message != model.DeletedByUser {
		t.Fatalf("expected tombstone, got %+v", th.Items[0])
	}

	res, th = do(t, http.MethodGet, base, "", nil)
	if res.StatusCode != http.StatusOK || th.Total != 2 {
		t.Fatalf("anonymous view: %d total %d", res.StatusCode, th.Total)
	}
	if th.Items[0].Replies[0].CanEdit {
		t.Fatalf("anonymous visitor should not be able to edit")
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	alice := token(t, model.Actor{Name: "Alice", Email: "alice@levelup.cl"})
	bob := token(t, model.Actor{Name: "Bob", Email: "bob@levelup.cl"})
	base := srv.URL + "/posts/p1/comments"

	res, _ := do(t, http.MethodPost, base, "", map[string]any{"message": "hola"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous comment: expected 401, got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodPost, base, "not-a-jwt", map[string]any{"message": "hola"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodPost, base, alice, map[string]any{"message": "   "})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank message: expected 400, got %d", res.StatusCode)
	}

	_, th := do(t, http.MethodPost, base, alice, map[string]any{"message": "mío"})
	id := th.CreatedID

	res, _ = do(t, http.MethodPatch, base+"/"+id, bob, map[string]any{"message": "tuyo"})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign edit: expected 403, got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodDelete, base+"/"+id+"?hard=true", alice, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("hard delete by user: expected 403, got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodDelete, base+"/"+id+"?hard=maybe", alice, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad hard flag: expected 400, got %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodGet, base+"/nope/path", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing path: expected 404, got %d", res.StatusCode)
	}
}

func TestAdminHardDelete(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	alice := token(t, model.Actor{Name: "Alice", Email: "alice@levelup.cl"})
	admin := token(t, model.Actor{Name: "Mod", Email: "mod@levelup.cl", Role: model.RoleAdmin})
	base := srv.URL + "/posts/p1/comments"

	_, th := do(t, http.MethodPost, base, alice, map[string]any{"message": "spam"})
	res, th := do(t, http.MethodDelete, base+"/"+th.CreatedID+"?hard=true", admin, nil)
	if res.StatusCode != http.StatusOK || th.Total != 0 {
		t.Fatalf("hard delete: %d total %d", res.StatusCode, th.Total)
	}
}

func TestCollapseRoutes(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	alice := token(t, model.Actor{Name: "Alice", Email: "alice@levelup.cl"})
	base := srv.URL + "/posts/p1"

	_, th := do(t, http.MethodPost, base+"/comments", alice, map[string]any{"message": "a"})
	id := th.CreatedID

	_, th = do(t, http.MethodPost, base+"/comments/"+id+"/collapse", "", nil)
	if !th.Items[0].Collapsed {
		t.Fatalf("expected collapsed after toggle")
	}
	_, th = do(t, http.MethodPost, base+"/expand-all", "", nil)
	if th.Items[0].Collapsed {
		t.Fatalf("expected expanded after expand-all")
	}
	_, th = do(t, http.MethodPost, base+"/collapse-all", "", nil)
	if !th.Items[0].Collapsed {
		t.Fatalf("expected collapsed after collapse-all")
	}

	for _, suffix := range []string{"/replies/expand", "/replies/shrink"} {
		res, _ := do(t, http.MethodPost, base+"/comments/"+id+suffix, "", nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", suffix, res.StatusCode)
		}
	}
}

func TestSearchRoute(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	alice := token(t, model.Actor{Name: "Alice", Email: "alice@levelup.cl"})
	_, _ = do(t, http.MethodPost, srv.URL+"/posts/p1/comments", alice, map[string]any{"message": "Elden Ring"})

	res, err := http.Get(srv.URL + "/posts/p1/comments/search?q=elden")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer res.Body.Close()

	var page model.SearchPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Alice" {
		t.Fatalf("unexpected search page: %+v", page)
	}
}

func TestParseTokenNormalizesRole(t *testing.T) {
	tok, err := handler.IssueToken(secret, model.Actor{Email: "x@levelup.cl", Role: "Administrador"}, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	a, err := handler.ParseToken(secret, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.IsAdmin() {
		t.Fatalf("expected admin role, got %q", a.Role)
	}

	if _, err := handler.ParseToken([]byte("other"), tok); err == nil {
		t.Fatalf("expected signature error")
	}
}

type downKV struct {
	*inm.Repo
}

func (downKV) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthChecksStorage(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	down := newServerWith(downKV{inm.New()})
	defer down.Close()

	res, err = http.Get(down.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when storage is down, got %d", res.StatusCode)
	}
}
