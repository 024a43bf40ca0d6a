package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/dedup"
	"github.com/MikeSquared-Agency/autobroker/internal/store"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// LeadArchive reads persisted leads.
type LeadArchive interface {
	RecentLeads(ctx context.Context, limit int) ([]store.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*store.Lead, error)
}

type LeadDeduplicator interface {
	DeduplicateLeads(ctx context.Context, window time.Duration, execute bool) (*dedup.Result, error)
}

type leadResponse struct {
	ID             uuid.UUID             `json:"id"`
	ConversationID string                `json:"conversationId"`
	FormType       string                `json:"formType,omitempty"`
	Language       string                `json:"language"`
	Profile        map[string]string     `json:"profile"`
	Subject        string                `json:"subject"`
	HTMLBody       string                `json:"htmlBody,omitempty"`
	Transcript     transcript.Transcript `json:"transcript,omitempty"`
	DeliveryStatus string                `json:"deliveryStatus"`
	DeliveryError  string                `json:"deliveryError,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toLeadResponse(l store.Lead, full bool) leadResponse {
	out := leadResponse{
		ID:             l.ID,
		ConversationID: l.ConversationID,
		FormType:       l.FormType,
		Language:       l.Language,
		Profile:        l.Profile,
		Subject:        l.Subject,
		DeliveryStatus: l.DeliveryStatus,
		DeliveryError:  l.DeliveryError,
		CreatedAt:      l.CreatedAt,
	}
	if full {
		out.HTMLBody = l.HTMLBody
		out.Transcript = l.Transcript
	}
	return out
}

func (s *Server) archiveReady(w http.ResponseWriter) bool {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return false
	}
	return true
}

// listLeads handles GET /api/v1/leads?limit=20
func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	if !s.archiveReady(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	leads, err := s.archive.RecentLeads(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list leads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	out := make([]leadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": out})
}

// getLead handles GET /api/v1/leads/{id}
func (s *Server) getLead(w http.ResponseWriter, r *http.Request) {
	if !s.archiveReady(w) {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	l, err := s.archive.GetLead(r.Context(), id)
	if errors.Is(err, store.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to get lead", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(*l, true))
}

// dedupLeads handles POST /api/v1/leads/dedup?window=168h&execute=true.
// Without execute it is a dry run.
func (s *Server) dedupLeads(w http.ResponseWriter, r *http.Request) {
	if s.dedup == nil {
		writeError(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return
	}
	q := r.URL.Query()
	window := dedup.DefaultWindow
	if v := q.Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
		window = d
	}
	execute, _ := strconv.ParseBool(q.Get("execute"))

	res, err := s.dedup.DeduplicateLeads(r.Context(), window, execute)
	if err != nil {
		s.logger.Error("lead dedup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "lead dedup failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
