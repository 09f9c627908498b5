package http

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes() stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.Health)
	r.Get("/stats", h.Stats)

	r.Route("/posts/{post}", func(r chi.Router) {
		r.Use(h.Identity)

		r.Post("/collapse-all", h.CollapseAll)
		r.Post("/expand-all", h.ExpandAll)

		r.Get("/comments", h.GetThread)
		r.Post("/comments", h.CreateComment)
		r.Get("/comments/search", h.SearchComments)
		r.Patch("/comments/{id}", h.EditComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Get("/comments/{id}/path", h.GetPath)
		r.Post("/comments/{id}/collapse", h.ToggleCollapse)
		r.Post("/comments/{id}/replies", h.CreateReply)
		r.Post("/comments/{id}/replies/expand", h.ExpandReplies)
		r.Post("/comments/{id}/replies/shrink", h.ShrinkReplies)
	})

	return r
}

func (h *Handler) accessLog(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
