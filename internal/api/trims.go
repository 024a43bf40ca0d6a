package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/trims"
)

type trimRequest struct {
	Make        string `json:"make"`
	Model       string `json:"model"`
	RequestedBy string `json:"requestedBy"`
}

// listTrimRequests handles GET /api/v1/trims/requests
func (s *Server) listTrimRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"requests": s.trims.All()})
}

// recordTrimRequest handles POST /api/v1/trims/requests
func (s *Server) recordTrimRequest(w http.ResponseWriter, r *http.Request) {
	var req trimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		writeError(w, http.StatusBadRequest, "make and model are required")
		return
	}
	entry := s.trims.Request(req.Make, req.Model, req.RequestedBy)
	s.logger.Info("trim request logged", "make", entry.Make, "model", entry.Model, "count", entry.Count)
	writeJSON(w, http.StatusCreated, entry)
}

// clearTrimRequests handles DELETE /api/v1/trims/requests
func (s *Server) clearTrimRequests(w http.ResponseWriter, r *http.Request) {
	s.trims.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// topTrimRequests handles GET /api/v1/trims/requests/top?n=10
func (s *Server) topTrimRequests(w http.ResponseWriter, r *http.Request) {
	n := trims.DefaultTop
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": s.trims.Top(n)})
}

// suggestTrims handles GET /api/v1/trims/suggestions?make=&model=
func (s *Server) suggestTrims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("make") == "" || q.Get("model") == "" {
		writeError(w, http.StatusBadRequest, "make and model are required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trims": trims.Suggest(q.Get("make"), q.Get("model"))})
}
