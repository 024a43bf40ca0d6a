package api

import (
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

type previewRequest struct {
	Language string                `json:"language"`
	Extended bool                  `json:"extended"`
	History  transcript.Transcript `json:"history"`
}

type previewResponse struct {
	Profile  profile.VehicleProfile `json:"profile"`
	Subject  string                 `json:"subject"`
	HTMLBody string                 `json:"htmlBody"`
}

type formResponse struct {
	ConversationID string `json:"conversationId"`
	LeadID         string `json:"leadId,omitempty"`
	Delivered      bool   `json:"delivered"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) leadsReady(w http.ResponseWriter) bool {
	if s.leads == nil {
		writeError(w, http.StatusServiceUnavailable, "lead pipeline is not configured")
		return false
	}
	return true
}

// previewLead handles POST /api/v1/leads/preview
func (s *Server) previewLead(w http.ResponseWriter, r *http.Request) {
	if !s.leadsReady(w) {
		return
	}
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prof, doc := s.leads.Preview(processor.Completion{
		Language:   profile.ParseLanguage(req.Language),
		Sequence:   profile.SequenceFor(req.Extended),
		Transcript: req.History,
	})
	writeJSON(w, http.StatusOK, previewResponse{
		Profile:  prof,
		Subject:  doc.Subject,
		HTMLBody: doc.HTMLBody,
	})
}

// submitVehicleForm handles POST /api/v1/forms/vehicle
func (s *Server) submitVehicleForm(w http.ResponseWriter, r *http.Request) {
	if !s.leadsReady(w) {
		return
	}
	var form processor.VehicleForm
	if !decodeJSON(w, r, &form) {
		return
	}
	res, err := s.leads.SubmitVehicleForm(r.Context(), form)
	s.writeFormResult(w, res, err)
}

// submitContactForm handles POST /api/v1/forms/contact
func (s *Server) submitContactForm(w http.ResponseWriter, r *http.Request) {
	if !s.leadsReady(w) {
		return
	}
	var form processor.ContactForm
	if !decodeJSON(w, r, &form) {
		return
	}
	res, err := s.leads.SubmitContactForm(r.Context(), form)
	s.writeFormResult(w, res, err)
}

func (s *Server) writeFormResult(w http.ResponseWriter, res *processor.Result, err error) {
	var fe *processor.FormError
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": fe.Error(), "missing": fe.Missing})
		return
	}
	if res == nil {
		s.logger.Error("form submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "form submission failed")
		return
	}

	out := formResponse{
		ConversationID: res.Payload.ConversationID,
		LeadID:         res.LeadID,
		Delivered:      res.Delivered,
		Error:          res.Error,
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, out)
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}
