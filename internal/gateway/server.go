package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/threads/{threadID}", func(r chi.Router) {
			r.Get("/messages", g.handleListMessages())
			r.Post("/messages", g.handleSendMessage())
			r.Post("/attachments", g.handleSendAttachment())
			r.Post("/calls/missed", g.handleMissedCall())
		})
		r.Get("/uploads/{uploadID}/events", g.handleUploadEvents())
	})

	return r
}
