package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender sends email through the Resend transactional API.
type ResendSender struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
}

// NewResendSender creates a Resend-backed sender. from is the fixed
// from-address used for every message.
func NewResendSender(apiKey, from string, timeout time.Duration) *ResendSender {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ResendSender{
		apiKey:     apiKey,
		from:       from,
		endpoint:   resendEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the message to Resend. A non-2xx response is surfaced as a
// *DeliveryError; the caller decides whether that fails the request or just
// a tally entry.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Provider: "resend", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Provider: "resend", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Provider: "resend", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{Provider: "resend", Status: resp.StatusCode}
	}
	return nil
}
