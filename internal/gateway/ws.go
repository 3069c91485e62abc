package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

// uploadEventsTimeout bounds how long a progress subscription may stay open.
// Uploads run at most three attempts with short backoffs; anything beyond
// this window is a stale subscriber.
const uploadEventsTimeout = 5 * time.Minute

// handleUploadEvents serves GET /v1/uploads/{uploadID}/events. It upgrades
// to a websocket and streams composer progress events for the upload until
// a terminal event arrives or the client goes away.
func (g *Gateway) handleUploadEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploadID := chi.URLParam(r, "uploadID")

		events, cancel := g.composer.Progress().Subscribe(uploadID)
		defer cancel()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("websocket accept failed", "upload", uploadID, "error", err)
			return
		}
		defer func() { _ = conn.CloseNow() }()

		ctx, cancelCtx := context.WithTimeout(r.Context(), uploadEventsTimeout)
		defer cancelCtx()

		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "timeout")
				return
			case ev, ok := <-events:
				if !ok {
					_ = conn.Close(websocket.StatusNormalClosure, "done")
					return
				}
				if err := wsjson.Write(ctx, conn, ev); err != nil {
					return
				}
			}
		}
	}
}
