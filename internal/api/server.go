package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/autobroker/internal/chat"
	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/trims"
)

// ChatService is the conversation driver as seen by the HTTP layer.
type ChatService interface {
	Start(ctx context.Context, lang profile.Language, extended bool) (*chat.Session, error)
	Get(ctx context.Context, id string) (*chat.Session, error)
	Send(ctx context.Context, id, text string) (*chat.Reply, error)
	Submit(ctx context.Context, id string) (*chat.DeliveryOutcome, error)
}

// LeadService renders and delivers leads outside a chat session.
type LeadService interface {
	Preview(c processor.Completion) (profile.VehicleProfile, email.Document)
	SubmitVehicleForm(ctx context.Context, f processor.VehicleForm) (*processor.Result, error)
	SubmitContactForm(ctx context.Context, f processor.ContactForm) (*processor.Result, error)
}

type Options struct {
	Port      int
	APIToken  string
	Assistant string
	Chat      ChatService
	Leads     LeadService
	Archive   LeadArchive
	Dedup     LeadDeduplicator
	Trims     *trims.Tracker
	Logger    *slog.Logger
}

type Server struct {
	router    *chi.Mux
	http      *http.Server
	port      int
	assistant string
	chat      ChatService
	leads     LeadService
	archive   LeadArchive
	dedup     LeadDeduplicator
	trims     *trims.Tracker
	logger    *slog.Logger
}

func NewServer(opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      opts.Port,
		assistant: opts.Assistant,
		chat:      opts.Chat,
		leads:     opts.Leads,
		archive:   opts.Archive,
		dedup:     opts.Dedup,
		trims:     opts.Trims,
		logger:    opts.Logger,
	}
	if s.trims == nil {
		s.trims = trims.NewTracker()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))
		r.Get("/autobroker/status", s.status)

		r.Route("/chat/sessions", func(r chi.Router) {
			r.Post("/", s.startSession)
			r.Get("/{id}", s.getSession)
			r.Post("/{id}/messages", s.sendMessage)
			r.Post("/{id}/submit", s.submitSession)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", s.listLeads)
			r.Post("/preview", s.previewLead)
			r.Post("/dedup", s.dedupLeads)
			r.Get("/{id}", s.getLead)
		})
		r.Post("/forms/vehicle", s.submitVehicleForm)
		r.Post("/forms/contact", s.submitContactForm)

		r.Route("/trims", func(r chi.Router) {
			r.Get("/requests", s.listTrimRequests)
			r.Post("/requests", s.recordTrimRequest)
			r.Delete("/requests", s.clearTrimRequests)
			r.Get("/requests/top", s.topTrimRequests)
			r.Get("/suggestions", s.suggestTrims)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called, which makes it return
// http.ErrServerClosed.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":         "autobroker",
		"status":        "ok",
		"assistant":     s.assistant,
		"trimRequests":  s.trims.Len(),
		"chatAvailable": s.chat != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// chatStatus maps driver errors to HTTP status codes.
func chatStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrSessionCompleted), errors.Is(err, chat.ErrNotCompleted):
		return http.StatusConflict
	case errors.Is(err, chat.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
