package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/pkg/httputil"
	"github.com/techmoncton/hive/internal/service/broadcast"
	"github.com/techmoncton/hive/internal/service/subscription"
)

// Subscriptions is the lifecycle surface the handlers depend on.
type Subscriptions interface {
	Subscribe(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (alreadyVerified bool, err error)
	Unsubscribe(ctx context.Context, token string) error
}

// Broadcaster triggers one update run.
type Broadcaster interface {
	SendUpdate(ctx context.Context) (*domain.DeliveryTally, error)
}

// EventLister serves the public event endpoints.
type EventLister interface {
	Upcoming(ctx context.Context) []domain.Event
	PastEvents(ctx context.Context) []domain.Event
	AllEvents(ctx context.Context) []domain.Event
}

// Handlers holds the HTTP handlers for all endpoints.
type Handlers struct {
	subs   Subscriptions
	bcast  Broadcaster
	events EventLister
}

// NewHandlers creates the handler set.
func NewHandlers(subs Subscriptions, bcast Broadcaster, events EventLister) *Handlers {
	return &Handlers{subs: subs, bcast: bcast, events: events}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /subscribe. Every non-error outcome gets the same
// response, so callers can't tell a new address from a known one.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		httputil.BadRequest(w, "Email is required")
		return
	}

	err := h.subs.Subscribe(r.Context(), req.Email)
	switch {
	case errors.Is(err, subscription.ErrInvalidEmail):
		httputil.BadRequest(w, "Invalid email format")
	case err != nil:
		httputil.InternalError(w, err)
	default:
		httputil.OK(w, "Please check your email to verify your subscription")
	}
}

// Verify handles GET /verify?token=...
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.BadRequest(w, "Token is required")
		return
	}

	already, err := h.subs.Verify(r.Context(), token)
	switch {
	case errors.Is(err, subscription.ErrInvalidToken):
		httputil.BadRequest(w, "Invalid token format")
	case errors.Is(err, subscription.ErrTokenNotFound):
		httputil.NotFound(w, "Invalid or expired token")
	case err != nil:
		httputil.InternalError(w, err)
	case already:
		httputil.OK(w, "Email already verified")
	default:
		httputil.OK(w, "Email verified successfully")
	}
}

// Unsubscribe handles GET /unsubscribe?token=... A token that matches nothing
// still gets the success message.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.BadRequest(w, "Token is required")
		return
	}

	err := h.subs.Unsubscribe(r.Context(), token)
	switch {
	case errors.Is(err, subscription.ErrInvalidToken):
		httputil.BadRequest(w, "Invalid token format")
	case err != nil:
		httputil.InternalError(w, err)
	default:
		httputil.OK(w, "You have been unsubscribed")
	}
}

// SendUpdate handles POST /send-update. Admin-only; the key check lives in
// the route middleware.
func (h *Handlers) SendUpdate(w http.ResponseWriter, r *http.Request) {
	tally, err := h.bcast.SendUpdate(r.Context())
	switch {
	case errors.Is(err, broadcast.ErrNoRecipients):
		zero := 0
		httputil.JSON(w, http.StatusOK, httputil.Response{
			Success: true,
			Message: "No verified subscribers",
			Sent:    &zero,
		})
	case errors.Is(err, broadcast.ErrNothingToSend):
		zero := 0
		httputil.JSON(w, http.StatusOK, httputil.Response{
			Success: true,
			Message: "No upcoming events and no fallback link configured; nothing to send",
			Sent:    &zero,
			Failed:  &zero,
		})
	case err != nil:
		httputil.InternalError(w, err)
	default:
		message := fmt.Sprintf("Update sent to %d subscribers", tally.Sent)
		if tally.Failed > 0 {
			message = fmt.Sprintf("Update sent to %d subscribers, %d failed", tally.Sent, tally.Failed)
		}
		httputil.JSON(w, http.StatusOK, httputil.Response{
			Success: true,
			Message: message,
			Sent:    &tally.Sent,
			Failed:  &tally.Failed,
			Event:   tally.EventTopic,
		})
	}
}

// UpcomingEvents handles GET /events/upcoming. A broken feed yields an empty
// list, never an error.
func (h *Handlers) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	writeEvents(w, h.events.Upcoming(r.Context()))
}

// PastEvents handles GET /events/past, most recent first.
func (h *Handlers) PastEvents(w http.ResponseWriter, r *http.Request) {
	writeEvents(w, h.events.PastEvents(r.Context()))
}

// AllEvents handles GET /events, the full listing back to the feed's first
// year.
func (h *Handlers) AllEvents(w http.ResponseWriter, r *http.Request) {
	writeEvents(w, h.events.AllEvents(r.Context()))
}

func writeEvents(w http.ResponseWriter, events []domain.Event) {
	if events == nil {
		events = []domain.Event{}
	}
	httputil.JSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Events:  events,
	})
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
