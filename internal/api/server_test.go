package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/autobroker/internal/chat"
	"github.com/MikeSquared-Agency/autobroker/internal/dedup"
	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/store"
	"github.com/MikeSquared-Agency/autobroker/internal/trims"
	"github.com/MikeSquared-Agency/autobroker/internal/webhook"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeChat struct {
	sendReply *chat.Reply
	sendErr   error
	submitOut *chat.DeliveryOutcome
	lastText  string
}

func (f *fakeChat) Start(_ context.Context, lang profile.Language, extended bool) (*chat.Session, error) {
	return &chat.Session{ID: "conv_test", Language: lang, Extended: extended, Flow: chat.NewFlow(profile.SequenceFor(extended))}, nil
}

func (f *fakeChat) Get(_ context.Context, id string) (*chat.Session, error) {
	if id != "conv_test" {
		return nil, chat.ErrSessionNotFound
	}
	return &chat.Session{ID: id, Language: profile.French, Flow: chat.NewFlow(profile.StandardSequence)}, nil
}

func (f *fakeChat) Send(_ context.Context, id, text string) (*chat.Reply, error) {
	f.lastText = text
	if id != "conv_test" {
		return nil, chat.ErrSessionNotFound
	}
	return f.sendReply, f.sendErr
}

func (f *fakeChat) Submit(_ context.Context, id string) (*chat.DeliveryOutcome, error) {
	if f.submitOut == nil {
		return nil, chat.ErrNotCompleted
	}
	return f.submitOut, nil
}

type fakeLeads struct {
	formErr error
	result  *processor.Result
}

func (f *fakeLeads) Preview(c processor.Completion) (profile.VehicleProfile, email.Document) {
	p := profile.New()
	for _, turn := range c.Transcript {
		if turn.Content == "Kia" {
			p.Set(profile.Brand, "Kia")
		}
	}
	return p, email.Compose(p, c.Language, 2026)
}

func (f *fakeLeads) SubmitVehicleForm(_ context.Context, _ processor.VehicleForm) (*processor.Result, error) {
	return f.result, f.formErr
}

func (f *fakeLeads) SubmitContactForm(_ context.Context, _ processor.ContactForm) (*processor.Result, error) {
	return f.result, f.formErr
}

func newTestServer(c ChatService, l LeadService, token string) *Server {
	return NewServer(Options{
		Port:      8760,
		APIToken:  token,
		Assistant: "anthropic",
		Chat:      c,
		Leads:     l,
		Logger:    discardLogger(),
	})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(nil, nil, "secret"), "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	w := do(t, newTestServer(&fakeChat{}, nil, ""), "GET", "/api/v1/autobroker/status", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["agent"] != "autobroker" {
		t.Errorf("expected agent autobroker, got %v", body["agent"])
	}
	if body["assistant"] != "anthropic" {
		t.Errorf("expected assistant anthropic, got %v", body["assistant"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	w := do(t, newTestServer(nil, nil, ""), "GET", "/nonexistent", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(&fakeChat{}, nil, "secret")

	w := do(t, srv, "GET", "/api/v1/autobroker/status", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/autobroker/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/autobroker/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", rec.Code)
	}
}

func TestStartSession(t *testing.T) {
	w := do(t, newTestServer(&fakeChat{}, nil, ""), "POST", "/api/v1/chat/sessions", `{"language":"en"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	body := decode(t, w)
	if body["conversationId"] != "conv_test" {
		t.Errorf("conversationId = %v", body["conversationId"])
	}
	if body["welcome"] != chat.Welcome(profile.English) {
		t.Errorf("welcome = %v", body["welcome"])
	}
	if body["stage"] != string(profile.Brand) {
		t.Errorf("stage = %v", body["stage"])
	}
}

func TestSendMessage(t *testing.T) {
	c := &fakeChat{sendReply: &chat.Reply{Message: "Neuf ou usagé ?", Stage: chat.Stage(profile.Condition)}}
	w := do(t, newTestServer(c, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/messages", `{"content":"Toyota"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if c.lastText != "Toyota" {
		t.Errorf("driver received %q", c.lastText)
	}
	body := decode(t, w)
	if body["reply"] != "Neuf ou usagé ?" || body["stage"] != "condition" || body["completed"] != false {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestSendMessage_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"unknown session", "/api/v1/chat/sessions/nope/messages", nil, http.StatusNotFound},
		{"empty", "/api/v1/chat/sessions/conv_test/messages", chat.ErrEmptyMessage, http.StatusBadRequest},
		{"completed", "/api/v1/chat/sessions/conv_test/messages", chat.ErrSessionCompleted, http.StatusConflict},
		{"store failure", "/api/v1/chat/sessions/conv_test/messages", errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(&fakeChat{sendErr: tt.err}, nil, ""), "POST", tt.path, `{"content":"x"}`)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestSendMessage_AssistantDownReturnsApology(t *testing.T) {
	c := &fakeChat{
		sendReply: &chat.Reply{Message: chat.Apology(profile.French), Stage: chat.Stage(profile.Brand)},
		sendErr:   chat.ErrAssistantUnavailable,
	}
	w := do(t, newTestServer(c, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/messages", `{"content":"allo"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if body := decode(t, w); body["reply"] != chat.Apology(profile.French) {
		t.Errorf("expected apology reply, got %v", body)
	}
}

func TestSendMessage_InvalidJSON(t *testing.T) {
	w := do(t, newTestServer(&fakeChat{}, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/messages", `{`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmitSession(t *testing.T) {
	w := do(t, newTestServer(&fakeChat{}, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/submit", "")
	if w.Code != http.StatusConflict {
		t.Errorf("not completed: expected 409, got %d", w.Code)
	}

	c := &fakeChat{submitOut: &chat.DeliveryOutcome{Status: chat.DeliveryFailed, Error: "webhook returned 500"}}
	w = do(t, newTestServer(c, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/submit", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("failed delivery: expected 502, got %d", w.Code)
	}

	c = &fakeChat{submitOut: &chat.DeliveryOutcome{Status: chat.DeliveryDelivered, LeadID: "lead-9"}}
	w = do(t, newTestServer(c, nil, ""), "POST", "/api/v1/chat/sessions/conv_test/submit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delivered: expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["leadId"] != "lead-9" {
		t.Errorf("leadId = %v", body["leadId"])
	}
}

func TestChatNotConfigured(t *testing.T) {
	w := do(t, newTestServer(nil, nil, ""), "POST", "/api/v1/chat/sessions", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestPreviewLead(t *testing.T) {
	body := `{"language":"en","history":[{"role":"assistant","content":"What BRAND?"},{"role":"user","content":"Kia"}]}`
	w := do(t, newTestServer(nil, &fakeLeads{}, ""), "POST", "/api/v1/leads/preview", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode(t, w)
	prof, _ := got["profile"].(map[string]any)
	if prof["brand"] != "Kia" {
		t.Errorf("profile = %v", got["profile"])
	}
	if !strings.Contains(got["subject"].(string), "Kia") {
		t.Errorf("subject = %v", got["subject"])
	}
	if got["htmlBody"] == "" {
		t.Error("expected html body")
	}
}

func TestSubmitForms(t *testing.T) {
	delivered := &processor.Result{
		LeadID:    "lead-1",
		Delivered: true,
		Payload:   webhook.Payload{ConversationID: "vehicle_form_1"},
	}
	failed := &processor.Result{
		Error:   "webhook returned 500",
		Payload: webhook.Payload{ConversationID: "contact_1"},
	}

	tests := []struct {
		name   string
		path   string
		leads  *fakeLeads
		want   int
		convID string
	}{
		{"vehicle delivered", "/api/v1/forms/vehicle", &fakeLeads{result: delivered}, http.StatusAccepted, "vehicle_form_1"},
		{"contact failed", "/api/v1/forms/contact", &fakeLeads{result: failed, formErr: errors.New("deliver lead: boom")}, http.StatusBadGateway, "contact_1"},
		{"invalid", "/api/v1/forms/vehicle", &fakeLeads{formErr: &processor.FormError{Missing: []string{"brand"}}}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(nil, tt.leads, ""), "POST", tt.path, `{"name":"x"}`)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			body := decode(t, w)
			if tt.convID != "" && body["conversationId"] != tt.convID {
				t.Errorf("conversationId = %v", body["conversationId"])
			}
			if tt.want == http.StatusBadRequest {
				missing, _ := body["missing"].([]any)
				if len(missing) != 1 || missing[0] != "brand" {
					t.Errorf("missing = %v", body["missing"])
				}
			}
		})
	}
}

func TestTrimRequests(t *testing.T) {
	tracker := trims.NewTracker()
	srv := NewServer(Options{Trims: tracker, Logger: discardLogger()})

	for _, body := range []string{
		`{"make":"Ford","model":"Bronco"}`,
		`{"make":"ford","model":"BRONCO","requestedBy":"a@x.com"}`,
		`{"make":"Kia","model":"EV9"}`,
	} {
		if w := do(t, srv, "POST", "/api/v1/trims/requests", body); w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}
	if w := do(t, srv, "POST", "/api/v1/trims/requests", `{"make":"Ford"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing model: expected 400, got %d", w.Code)
	}

	w := do(t, srv, "GET", "/api/v1/trims/requests/top?n=1", "")
	var top struct {
		Requests []trims.Request `json:"requests"`
	}
	if err := json.NewDecoder(w.Body).Decode(&top); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(top.Requests) != 1 || top.Requests[0].Model != "Bronco" || top.Requests[0].Count != 2 {
		t.Errorf("top = %+v", top.Requests)
	}

	if w := do(t, srv, "GET", "/api/v1/trims/requests/top?n=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad n: expected 400, got %d", w.Code)
	}

	if w := do(t, srv, "DELETE", "/api/v1/trims/requests", ""); w.Code != http.StatusNoContent {
		t.Errorf("clear: expected 204, got %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/v1/trims/requests", "")
	if !bytes.Contains(w.Body.Bytes(), []byte(`"requests":[]`)) {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}

func TestSuggestTrims(t *testing.T) {
	srv := newTestServer(nil, nil, "")

	w := do(t, srv, "GET", "/api/v1/trims/suggestions?make=BMW&model=X5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Luxury") {
		t.Errorf("body = %s", w.Body.String())
	}
	if w := do(t, srv, "GET", "/api/v1/trims/suggestions?make=BMW", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

type fakeArchive struct {
	leads []store.Lead
	limit int
}

func (f *fakeArchive) RecentLeads(_ context.Context, limit int) ([]store.Lead, error) {
	f.limit = limit
	return f.leads, nil
}

func (f *fakeArchive) GetLead(_ context.Context, id uuid.UUID) (*store.Lead, error) {
	for i := range f.leads {
		if f.leads[i].ID == id {
			return &f.leads[i], nil
		}
	}
	return nil, store.ErrLeadNotFound
}

type fakeDedup struct {
	window  time.Duration
	execute bool
}

func (f *fakeDedup) DeduplicateLeads(_ context.Context, window time.Duration, execute bool) (*dedup.Result, error) {
	f.window, f.execute = window, execute
	return &dedup.Result{Window: window.String(), Execute: execute, Clusters: 1, Deduped: 2}, nil
}

func TestLeadArchive(t *testing.T) {
	id := uuid.New()
	archive := &fakeArchive{leads: []store.Lead{{
		ID:             id,
		ConversationID: "conv_1",
		Language:       "fr",
		Profile:        map[string]string{"brand": "Mazda"},
		Subject:        "subject",
		HTMLBody:       "<p>body</p>",
		DeliveryStatus: "delivered",
	}}}
	srv := NewServer(Options{Archive: archive, Logger: discardLogger()})

	w := do(t, srv, "GET", "/api/v1/leads?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	if archive.limit != 5 {
		t.Errorf("limit = %d", archive.limit)
	}
	if strings.Contains(w.Body.String(), "htmlBody") {
		t.Error("list should not include email bodies")
	}

	if w := do(t, srv, "GET", "/api/v1/leads?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/v1/leads/"+id.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["conversationId"] != "conv_1" || body["deliveryStatus"] != "delivered" || body["htmlBody"] == nil {
		t.Errorf("lead = %v", body)
	}

	if w := do(t, srv, "GET", "/api/v1/leads/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown lead: expected 404, got %d", w.Code)
	}
	if w := do(t, srv, "GET", "/api/v1/leads/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: expected 400, got %d", w.Code)
	}
}

func TestLeadArchive_NotConfigured(t *testing.T) {
	srv := newTestServer(nil, nil, "")
	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/v1/leads"},
		{"POST", "/api/v1/leads/dedup"},
	} {
		if w := do(t, srv, tc.method, tc.path, ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestDedupLeads(t *testing.T) {
	d := &fakeDedup{}
	srv := NewServer(Options{Dedup: d, Logger: discardLogger()})

	w := do(t, srv, "POST", "/api/v1/leads/dedup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if d.window != dedup.DefaultWindow || d.execute {
		t.Errorf("defaults: window=%s execute=%v", d.window, d.execute)
	}

	w = do(t, srv, "POST", "/api/v1/leads/dedup?window=48h&execute=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if d.window != 48*time.Hour || !d.execute {
		t.Errorf("window=%s execute=%v", d.window, d.execute)
	}
	if body := decode(t, w); body["deduped"] != float64(2) {
		t.Errorf("body = %v", body)
	}

	if w := do(t, srv, "POST", "/api/v1/leads/dedup?window=-1h", ""); w.Code != http.StatusBadRequest {
		t.Errorf("negative window: expected 400, got %d", w.Code)
	}
}
