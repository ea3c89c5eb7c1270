package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/service/broadcast"
	"github.com/techmoncton/hive/internal/service/subscription"
)

type stubSubs struct {
	subscribeErr   error
	verifyAlready  bool
	verifyErr      error
	unsubscribeErr error
}

func (s *stubSubs) Subscribe(context.Context, string) error { return s.subscribeErr }
func (s *stubSubs) Verify(context.Context, string) (bool, error) {
	return s.verifyAlready, s.verifyErr
}
func (s *stubSubs) Unsubscribe(context.Context, string) error { return s.unsubscribeErr }

type stubBroadcast struct {
	tally *domain.DeliveryTally
	err   error
}

func (s *stubBroadcast) SendUpdate(context.Context) (*domain.DeliveryTally, error) {
	return s.tally, s.err
}

type stubEvents struct {
	events []domain.Event
	past   []domain.Event
}

func (s *stubEvents) Upcoming(context.Context) []domain.Event   { return s.events }
func (s *stubEvents) PastEvents(context.Context) []domain.Event { return s.past }
func (s *stubEvents) AllEvents(context.Context) []domain.Event {
	return append(append([]domain.Event(nil), s.past...), s.events...)
}

const adminKey = "test-admin-key"

func newTestRouter(subs Subscriptions, bcast Broadcaster, events EventLister) http.Handler {
	if subs == nil {
		subs = &stubSubs{}
	}
	if bcast == nil {
		bcast = &stubBroadcast{tally: &domain.DeliveryTally{}}
	}
	if events == nil {
		events = &stubEvents{}
	}
	return SetupRoutes(NewHandlers(subs, bcast, events), "https://monctontechhive.ca", adminKey)
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Sent    *int           `json:"sent"`
	Failed  *int           `json:"failed"`
	Event   string         `json:"event"`
	Events  []domain.Event `json:"events"`
}

func doJSON(t *testing.T, router http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", `{"email":"a@example.com"}`, nil, http.StatusOK, "Please check your email to verify your subscription"},
		{"missing email", `{}`, nil, http.StatusBadRequest, "Email is required"},
		{"malformed body", `{not json`, nil, http.StatusBadRequest, "Invalid request body"},
		{"invalid email", `{"email":"nope"}`, subscription.ErrInvalidEmail, http.StatusBadRequest, "Invalid email format"},
		{"internal error", `{"email":"a@example.com"}`, errors.New("db down"), http.StatusInternalServerError, "An error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubSubs{subscribeErr: tt.err}, nil, nil)
			rec, env := doJSON(t, router, http.MethodPost, "/subscribe", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
			if env.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v at status %d", env.Success, rec.Code)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		already    bool
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", "/verify?token=t", false, nil, http.StatusOK, "Email verified successfully"},
		{"already verified", "/verify?token=t", true, nil, http.StatusOK, "Email already verified"},
		{"missing token", "/verify", false, nil, http.StatusBadRequest, "Token is required"},
		{"malformed token", "/verify?token=zzz", false, subscription.ErrInvalidToken, http.StatusBadRequest, "Invalid token format"},
		{"unknown token", "/verify?token=t", false, subscription.ErrTokenNotFound, http.StatusNotFound, "Invalid or expired token"},
		{"internal error", "/verify?token=t", false, errors.New("db down"), http.StatusInternalServerError, "An error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubSubs{verifyAlready: tt.already, verifyErr: tt.err}, nil, nil)
			rec, env := doJSON(t, router, http.MethodGet, tt.target, "", nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", "/unsubscribe?token=t", nil, http.StatusOK, "You have been unsubscribed"},
		{"unknown token still succeeds", "/unsubscribe?token=t", nil, http.StatusOK, "You have been unsubscribed"},
		{"missing token", "/unsubscribe", nil, http.StatusBadRequest, "Token is required"},
		{"malformed token", "/unsubscribe?token=zzz", subscription.ErrInvalidToken, http.StatusBadRequest, "Invalid token format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubSubs{unsubscribeErr: tt.err}, nil, nil)
			rec, env := doJSON(t, router, http.MethodGet, tt.target, "", nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestSendUpdate_RequiresAdminKey(t *testing.T) {
	router := newTestRouter(nil, &stubBroadcast{tally: &domain.DeliveryTally{Sent: 1}}, nil)

	rec, env := doJSON(t, router, http.MethodPost, "/send-update", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}
	if env.Message != "Unauthorized" {
		t.Errorf("message = %q", env.Message)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/send-update", "", map[string]string{"x-admin-key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/send-update", "", map[string]string{"x-admin-key": adminKey})
	if rec.Code != http.StatusOK {
		t.Errorf("right key: status = %d, want 200", rec.Code)
	}
}

func TestSendUpdate_Tally(t *testing.T) {
	router := newTestRouter(nil, &stubBroadcast{
		tally: &domain.DeliveryTally{Sent: 2, Failed: 1, EventTopic: "Go Meetup"},
	}, nil)

	rec, env := doJSON(t, router, http.MethodPost, "/send-update", "", map[string]string{"x-admin-key": adminKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Message != "Update sent to 2 subscribers, 1 failed" {
		t.Errorf("message = %q", env.Message)
	}
	if env.Sent == nil || *env.Sent != 2 || env.Failed == nil || *env.Failed != 1 {
		t.Errorf("tally fields: sent=%v failed=%v", env.Sent, env.Failed)
	}
	if env.Event != "Go Meetup" {
		t.Errorf("event = %q", env.Event)
	}
}

func TestSendUpdate_NoRecipients(t *testing.T) {
	router := newTestRouter(nil, &stubBroadcast{err: broadcast.ErrNoRecipients}, nil)

	rec, env := doJSON(t, router, http.MethodPost, "/send-update", "", map[string]string{"x-admin-key": adminKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Message != "No verified subscribers" {
		t.Errorf("message = %q", env.Message)
	}
	if env.Sent == nil || *env.Sent != 0 {
		t.Errorf("sent = %v, want 0", env.Sent)
	}
}

func TestSendUpdate_NothingToSend(t *testing.T) {
	router := newTestRouter(nil, &stubBroadcast{err: broadcast.ErrNothingToSend}, nil)

	rec, env := doJSON(t, router, http.MethodPost, "/send-update", "", map[string]string{"x-admin-key": adminKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.Success || env.Message != "No upcoming events and no fallback link configured; nothing to send" {
		t.Errorf("envelope = %+v", env)
	}
	if env.Sent == nil || *env.Sent != 0 || env.Failed == nil || *env.Failed != 0 {
		t.Errorf("tally fields: sent=%v failed=%v", env.Sent, env.Failed)
	}
}

func TestUpcomingEvents(t *testing.T) {
	router := newTestRouter(nil, nil, &stubEvents{events: []domain.Event{
		{Date: "2099-06-18", Topic: "Go Meetup"},
	}})

	rec, env := doJSON(t, router, http.MethodGet, "/events/upcoming", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(env.Events) != 1 || env.Events[0].Topic != "Go Meetup" {
		t.Errorf("events = %+v", env.Events)
	}
}

func TestUpcomingEvents_EmptyFeedIsEmptyList(t *testing.T) {
	router := newTestRouter(nil, nil, &stubEvents{})

	rec, _ := doJSON(t, router, http.MethodGet, "/events/upcoming", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Errorf("body = %s, want an explicit empty events array", rec.Body.String())
	}
}

func TestPastAndAllEvents(t *testing.T) {
	router := newTestRouter(nil, nil, &stubEvents{
		events: []domain.Event{{Date: "2099-06-18", Topic: "Go Meetup"}},
		past:   []domain.Event{{Date: "2024-02-21", Topic: "Intro Night"}},
	})

	rec, env := doJSON(t, router, http.MethodGet, "/events/past", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(env.Events) != 1 || env.Events[0].Topic != "Intro Night" {
		t.Errorf("past events = %+v", env.Events)
	}

	rec, env = doJSON(t, router, http.MethodGet, "/events", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(env.Events) != 2 {
		t.Errorf("all events = %+v", env.Events)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
