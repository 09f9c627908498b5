package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/levelupgamer/commenttree/internal/comment/service"
)

type Handler struct {
	svc    service.CommentService
	secret []byte
	log    zerolog.Logger
}

func New(svc service.CommentService, secret []byte, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, secret: secret, log: log}
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) GetThread(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.View(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) CreateComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	th, err := h.svc.Comment(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), req.Message)
	h.respond(w, r, stdhttp.StatusCreated, th, err)
}

func (h *Handler) CreateReply(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	th, err := h.svc.Reply(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"), req.Message)
	status := stdhttp.StatusCreated
	if th.CreatedID == "" {
		status = stdhttp.StatusOK
	}
	h.respond(w, r, status, th, err)
}

func (h *Handler) EditComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	th, err := h.svc.Edit(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"), req.Message)
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) DeleteComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	hard := false
	if v := r.URL.Query().Get("hard"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid hard flag"})
			return
		}
		hard = parsed
	}

	th, err := h.svc.Delete(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"), hard)
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) ToggleCollapse(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.ToggleCollapse(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) CollapseAll(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.CollapseAll(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) ExpandAll(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.ExpandAll(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) ExpandReplies(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.ExpandReplies(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) ShrinkReplies(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	th, err := h.svc.ShrinkReplies(r.Context(), chi.URLParam(r, "post"), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, r, stdhttp.StatusOK, th, err)
}

func (h *Handler) SearchComments(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	page, err := h.svc.Search(r.Context(), chi.URLParam(r, "post"), r.URL.Query().Get("q"))
	h.respond(w, r, stdhttp.StatusOK, page, err)
}

func (h *Handler) GetPath(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	items, err := h.svc.GetPath(r.Context(), chi.URLParam(r, "post"), chi.URLParam(r, "id"))
	h.respond(w, r, stdhttp.StatusOK, map[string]any{"items": items}, err)
}

func (h *Handler) Health(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("storage health check failed")
		writeJSON(w, stdhttp.StatusServiceUnavailable, map[string]any{"result": "storage unavailable"})
		return
	}
	writeJSON(w, stdhttp.StatusOK, map[string]any{"result": "ok"})
}

func (h *Handler) Stats(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, h.svc.Stats())
}

func (h *Handler) respond(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, v any, err error) {
	if err == nil {
		writeJSON(w, status, v)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid input"})
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, stdhttp.StatusUnauthorized, map[string]any{"error": "login required"})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, stdhttp.StatusForbidden, map[string]any{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, stdhttp.StatusNotFound, map[string]any{"error": "not found"})
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func decode(w stdhttp.ResponseWriter, r *stdhttp.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
		return false
	}
	return true
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
