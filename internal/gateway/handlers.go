package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edudashpro/attachd/internal/composer"
	"github.com/edudashpro/attachd/internal/store"
	"github.com/edudashpro/attachd/internal/upload"
	"github.com/edudashpro/attachd/pkg/content"
)

// senderHeader carries the authenticated user id, supplied by the fronting
// app backend.
const senderHeader = "X-Sender-ID"

// messageView is the JSON representation of a stored message.
type messageView struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(msg store.Message) messageView {
	return messageView{
		ID:        msg.ID,
		ThreadID:  msg.ThreadID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Preview:   content.DisplayText(msg.Content),
		CreatedAt: msg.CreatedAt,
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sender extracts the sender id, writing a 400 when absent.
func sender(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(senderHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+senderHeader+" header")
		return "", false
	}
	return id, true
}

// handleListMessages serves GET /v1/threads/{threadID}/messages.
func (g *Gateway) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadID := chi.URLParam(r, "threadID")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		msgs, err := g.store.ListThread(r.Context(), threadID, limit)
		if err != nil {
			g.logger.Error("list messages failed", "thread", threadID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		views := make([]messageView, 0, len(msgs))
		for _, msg := range msgs {
			views = append(views, viewOf(msg))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// sendMessageRequest is the body for POST /v1/threads/{threadID}/messages.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// handleSendMessage serves POST /v1/threads/{threadID}/messages.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := sender(w, r)
		if !ok {
			return
		}
		threadID := chi.URLParam(r, "threadID")

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		msg, err := g.composer.SendText(r.Context(), threadID, senderID, req.Text)
		if err != nil {
			if errors.Is(err, composer.ErrEmptyMessage) {
				writeError(w, http.StatusBadRequest, "message text is empty")
				return
			}
			g.logger.Error("send message failed", "thread", threadID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		g.metrics.messages.WithLabelValues(string(content.KindText)).Inc()
		writeJSON(w, http.StatusCreated, viewOf(msg))
	}
}

// attachmentResponse is the body returned by a successful attachment send.
type attachmentResponse struct {
	Message  messageView   `json:"message"`
	Upload   upload.Result `json:"upload"`
	UploadID string        `json:"uploadId"`
}

// handleSendAttachment serves POST /v1/threads/{threadID}/attachments.
// The request is multipart: a "file" part plus optional "upload_id",
// "content_type", "filename_hint", and "duration_ms" fields.
func (g *Gateway) handleSendAttachment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := sender(w, r)
		if !ok {
			return
		}
		threadID := chi.URLParam(r, "threadID")

		// Bound the request as a whole; the part itself is read in full so
		// the size policy sees (and reports) the file's actual size.
		r.Body = http.MaxBytesReader(w, r.Body, g.config.MaxUploadBytes)
		if err := r.ParseMultipartForm(g.config.MaxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}

		part, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file part")
			return
		}
		defer func() { _ = part.Close() }()

		data, err := io.ReadAll(part)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file part")
			return
		}

		opts := composer.AttachmentOptions{
			UploadID:     r.FormValue("upload_id"),
			ContentType:  r.FormValue("content_type"),
			FilenameHint: r.FormValue("filename_hint"),
		}
		if raw := r.FormValue("duration_ms"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				opts.DurationMs = n
			}
		}
		if opts.UploadID == "" {
			opts.UploadID = uuid.NewString()
		}

		file := upload.File{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Data:     data,
		}

		started := time.Now()
		msg, result, err := g.composer.SendAttachment(r.Context(), threadID, senderID, file, opts)
		g.metrics.uploadDuration.Observe(time.Since(started).Seconds())

		if err != nil {
			var vErr *upload.ValidationError
			var uErr *upload.UploadError
			switch {
			case errors.As(err, &vErr):
				g.metrics.uploads.WithLabelValues(resultValidationError).Inc()
				writeError(w, http.StatusUnprocessableEntity, vErr.Message)
			case errors.As(err, &uErr):
				g.metrics.uploads.WithLabelValues(resultUploadError).Inc()
				writeError(w, http.StatusBadGateway, uErr.Message)
			default:
				g.logger.Error("send attachment failed", "thread", threadID, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		g.metrics.uploads.WithLabelValues(resultOK).Inc()
		g.metrics.uploadBytes.Add(float64(len(data)))
		g.metrics.messages.WithLabelValues(string(content.KindMedia)).Inc()

		writeJSON(w, http.StatusCreated, attachmentResponse{
			Message:  viewOf(msg),
			Upload:   result,
			UploadID: opts.UploadID,
		})
	}
}

// missedCallRequest is the body for POST /v1/threads/{threadID}/calls/missed.
type missedCallRequest struct {
	CallID     string `json:"callId"`
	CallType   string `json:"callType"`
	CallerID   string `json:"callerId"`
	CallerName string `json:"callerName"`
	OccurredAt string `json:"occurredAt"`
}

// handleMissedCall serves POST /v1/threads/{threadID}/calls/missed.
func (g *Gateway) handleMissedCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := sender(w, r)
		if !ok {
			return
		}
		threadID := chi.URLParam(r, "threadID")

		var req missedCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.CallID == "" {
			writeError(w, http.StatusBadRequest, "missing callId")
			return
		}

		msg, err := g.composer.RecordMissedCall(r.Context(), threadID, senderID, content.CallEvent{
			EventType:  content.EventMissedCall,
			CallID:     req.CallID,
			CallType:   content.CallType(req.CallType),
			CallerID:   req.CallerID,
			CallerName: req.CallerName,
			OccurredAt: req.OccurredAt,
		})
		if err != nil {
			g.logger.Error("record missed call failed", "thread", threadID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		g.metrics.messages.WithLabelValues("call_event").Inc()
		writeJSON(w, http.StatusCreated, viewOf(msg))
	}
}
