package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/llm"
)

// ChatHandler handles the conversation endpoints. Replies stream to
// the client as server-sent events so the UI can render the message as
// it grows.
type ChatHandler struct {
	svc *dashboard.Service
	log zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *dashboard.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		svc: svc,
		log: log,
	}
}

// GetChat handles GET /api/chat
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	messages := h.svc.ChatMessages()
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"busy":     h.svc.ChatBusy(),
		"count":    len(messages),
	})
}

// StreamChat handles POST /api/chat
// It emits an SSE stream: "message" events carry the reply message as
// it accumulates text, then a final "done" or "error" event.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	if !h.svc.ModelEnabled() {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Model features are disabled")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	if h.svc.ChatBusy() {
		middleware.WriteError(w, http.StatusConflict, "A reply is already streaming")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Every visible change to the reply goes out as one event. The
	// reply is always the newest message in the snapshot.
	render := func(msgs []domain.ChatMessage) {
		if len(msgs) == 0 {
			return
		}
		writeEvent(w, flusher, "message", msgs[len(msgs)-1])
	}

	final, err := h.svc.SendChat(r.Context(), req.Message, render)
	if err != nil {
		h.log.Error().Err(err).Msg("Chat stream ended with error")
		writeEvent(w, flusher, "error", map[string]interface{}{
			"reply":        final,
			"rate_limited": errors.Is(err, llm.ErrRateLimited),
			"busy":         errors.Is(err, dashboard.ErrChatBusy),
		})
		return
	}

	writeEvent(w, flusher, "done", final)
}

// writeEvent marshals data as one SSE event and flushes it out.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
