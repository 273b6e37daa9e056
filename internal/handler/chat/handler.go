package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/backend/internal/model/chat"
	"github.com/coursedesk/backend/internal/service/advisor"
	chatservice "github.com/coursedesk/backend/internal/service/chat"
	"github.com/coursedesk/backend/pkg/utils"
)

// Advisor runs the tool-calling loop for one user utterance.
type Advisor interface {
	Respond(ctx context.Context, sessionID string, history []chat.Message, userMessage string, binding *advisor.Binding) (string, error)
}

// Handler exposes conversation endpoints.
type Handler struct {
	chatSvc *chatservice.Service
	advisor Advisor
}

// New creates the conversation handler. advisorSvc may be nil when the chat
// model is not configured; utterances are then rejected with 503.
func New(chatSvc *chatservice.Service, advisorSvc Advisor) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		advisor: advisorSvc,
	}
}

// RegisterRoutes registers conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleHistory)
	r.Post("/session/{sessionID}/messages", h.handleUtterance)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleUtterance accepts one user utterance, runs the advisor loop to
// completion under the session's turn lock, and returns the final assistant
// message. Only the user utterance and the final reply are persisted.
func (h *Handler) handleUtterance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.Content = strings.TrimSpace(payload.Content)
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	if h.advisor == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "advisor unavailable")
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	// One utterance per session at a time; a second one waits here.
	endTurn, err := h.chatSvc.BeginTurn(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	defer endTurn()

	history, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	userMsg := chat.Message{SessionID: sessionID, Role: chat.RoleUser, Content: payload.Content}
	if _, err := h.chatSvc.SaveMessage(r.Context(), userMsg); err != nil {
		h.respondSaveError(w, err)
		return
	}

	binding := &advisor.Binding{StudentID: session.StudentID}
	replyText, err := h.advisor.Respond(r.Context(), sessionID, history, payload.Content, binding)
	if err != nil {
		log.Printf("[chat] advisor failed for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusBadGateway, "advisor failed")
		return
	}

	if binding.StudentID != "" && binding.StudentID != session.StudentID {
		if err := h.chatSvc.BindStudent(r.Context(), sessionID, binding.StudentID); err != nil {
			log.Printf("[chat] failed to bind student for session=%s: %v", sessionID, err)
		}
	}

	assistantMsg := chat.Message{SessionID: sessionID, Role: chat.RoleAssistant, Content: replyText}
	saved, err := h.chatSvc.SaveMessage(r.Context(), assistantMsg)
	if err != nil {
		h.respondSaveError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, saved)
}

func (h *Handler) respondSaveError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	utils.RespondError(w, status, err.Error())
}
