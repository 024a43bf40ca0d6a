package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/autobroker/internal/chat"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

type startSessionRequest struct {
	Language string `json:"language"`
	Extended bool   `json:"extended"`
}

type sessionResponse struct {
	ConversationID string                `json:"conversationId"`
	Language       profile.Language      `json:"language"`
	Extended       bool                  `json:"extended"`
	Stage          chat.Stage            `json:"stage"`
	Completed      bool                  `json:"completed"`
	Delivery       string                `json:"delivery,omitempty"`
	LeadID         string                `json:"leadId,omitempty"`
	Welcome        string                `json:"welcome,omitempty"`
	History        transcript.Transcript `json:"history,omitempty"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	*chat.Reply
	Error string `json:"error,omitempty"`
}

func (s *Server) chatReady(w http.ResponseWriter) bool {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return false
	}
	return true
}

// startSession handles POST /api/v1/chat/sessions
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	if !s.chatReady(w) {
		return
	}
	var req startSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.chat.Start(r.Context(), profile.ParseLanguage(req.Language), req.Extended)
	if err != nil {
		s.logger.Error("failed to start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ConversationID: sess.ID,
		Language:       sess.Language,
		Extended:       sess.Extended,
		Stage:          sess.Stage(),
		Welcome:        chat.Welcome(sess.Language),
	})
}

// getSession handles GET /api/v1/chat/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if !s.chatReady(w) {
		return
	}
	sess, err := s.chat.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, chatStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ConversationID: sess.ID,
		Language:       sess.Language,
		Extended:       sess.Extended,
		Stage:          sess.Stage(),
		Completed:      sess.Completed,
		Delivery:       sess.Delivery,
		LeadID:         sess.LeadID,
		History:        sess.Log,
	})
}

// sendMessage handles POST /api/v1/chat/sessions/{id}/messages. When the
// assistant is down the apology is still returned, with a 503.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	if !s.chatReady(w) {
		return
	}
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := s.chat.Send(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		if reply != nil && errors.Is(err, chat.ErrAssistantUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, messageResponse{Reply: reply, Error: "assistant unavailable"})
			return
		}
		status := chatStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("send message failed", "error", err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply})
}

// submitSession handles POST /api/v1/chat/sessions/{id}/submit
func (s *Server) submitSession(w http.ResponseWriter, r *http.Request) {
	if !s.chatReady(w) {
		return
	}
	out, err := s.chat.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, chatStatus(err), err.Error())
		return
	}
	status := http.StatusOK
	if out.Status == chat.DeliveryFailed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out)
}
