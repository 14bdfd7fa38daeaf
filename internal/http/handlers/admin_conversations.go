package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// AdminConversationsHandler exposes recent chat transcripts to the admin
// portal.
type AdminConversationsHandler struct {
	transcripts *conversation.TranscriptStore
	logger      *logging.Logger
}

// NewAdminConversationsHandler creates the handler. A nil transcript store
// makes every lookup return an empty transcript.
func NewAdminConversationsHandler(store *conversation.TranscriptStore, logger *logging.Logger) *AdminConversationsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminConversationsHandler{transcripts: store, logger: logger}
}

// Transcript handles GET /admin/users/{id}/transcript?limit=50.
func (h *AdminConversationsHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var limit int64 = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.transcripts.List(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to load transcript", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if messages == nil {
		messages = []conversation.TranscriptMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}
