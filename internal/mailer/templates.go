package mailer

import (
	"fmt"

	"github.com/osteele/liquid"

	"github.com/techmoncton/hive/internal/domain"
)

// Email bodies mirror the site's transactional emails: a branded header, one
// call-to-action button, and an unsubscribe footer. They are Liquid templates
// so the site name and per-recipient links are injected at send time; feed
// values are escaped since the event feed is public input.

const verificationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #3b82f6;">{{ site_name | escape }}</h1>
  <p>Thanks for subscribing to {{ site_name | escape }} updates!</p>
  <p>Please click the button below to verify your email address:</p>
  <p style="margin: 30px 0;">
    <a href="{{ verify_url }}"
       style="background: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
      Verify Email
    </a>
  </p>
  <p style="color: #666; font-size: 14px;">
    Or copy this link: <a href="{{ verify_url }}">{{ verify_url }}</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">
    If you didn't subscribe to {{ site_name | escape }}, you can ignore this email or
    <a href="{{ unsubscribe_url }}" style="color: #999;">unsubscribe</a>.
  </p>
</body>
</html>`

const eventUpdateTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #3b82f6;">{{ site_name | escape }}</h1>
  <p>We have an upcoming event you won't want to miss!</p>

  <div style="background: #f8fafc; border-radius: 8px; padding: 20px; margin: 20px 0;">
    <h2 style="margin-top: 0; color: #1e293b;">{{ topic | escape }}</h2>
    <p style="color: #64748b; margin-bottom: 8px;"><strong>Speaker:</strong> {{ speaker | escape }}</p>
    <p style="color: #64748b; margin-bottom: 8px;"><strong>Date:</strong> {{ date | escape }}</p>
    <p style="color: #64748b; margin-bottom: 0;"><strong>Time:</strong> {{ time | escape }}</p>
  </div>

  <p style="margin: 30px 0;">
    <a href="{{ events_url }}"
       style="background: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
      View All Events
    </a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">
    You're receiving this because you subscribed to {{ site_name | escape }} updates.
    <a href="{{ unsubscribe_url }}" style="color: #999;">Unsubscribe</a>
  </p>
</body>
</html>`

const fallbackUpdateTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #3b82f6;">{{ site_name | escape }}</h1>
  <p>Check out what's happening at {{ site_name | escape }}!</p>

  <p style="margin: 30px 0;">
    <a href="{{ fallback_link }}"
       style="background: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
      Learn More
    </a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">
    You're receiving this because you subscribed to {{ site_name | escape }} updates.
    <a href="{{ unsubscribe_url }}" style="color: #999;">Unsubscribe</a>
  </p>
</body>
</html>`

// Templates renders the service's email bodies. Templates are parsed once at
// construction; rendering is safe for concurrent use.
type Templates struct {
	verification   *liquid.Template
	eventUpdate    *liquid.Template
	fallbackUpdate *liquid.Template
}

// NewTemplates parses all email templates.
func NewTemplates() (*Templates, error) {
	engine := liquid.NewEngine()

	verification, err := engine.ParseString(verificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse verification template: %w", err)
	}
	eventUpdate, err := engine.ParseString(eventUpdateTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse event update template: %w", err)
	}
	fallbackUpdate, err := engine.ParseString(fallbackUpdateTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse fallback update template: %w", err)
	}

	return &Templates{
		verification:   verification,
		eventUpdate:    eventUpdate,
		fallbackUpdate: fallbackUpdate,
	}, nil
}

// Verification renders the subscribe-confirmation email body.
func (t *Templates) Verification(siteName, verifyURL, unsubscribeURL string) (string, error) {
	out, err := t.verification.RenderString(liquid.Bindings{
		"site_name":       siteName,
		"verify_url":      verifyURL,
		"unsubscribe_url": unsubscribeURL,
	})
	if err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	return out, nil
}

// EventUpdate renders the upcoming-event broadcast body for one recipient.
func (t *Templates) EventUpdate(siteName string, ev domain.Event, eventsURL, unsubscribeURL string) (string, error) {
	out, err := t.eventUpdate.RenderString(liquid.Bindings{
		"site_name":       siteName,
		"topic":           ev.Topic,
		"speaker":         ev.Presentation,
		"date":            domain.FormatEventDate(ev.Date),
		"time":            ev.Time,
		"events_url":      eventsURL,
		"unsubscribe_url": unsubscribeURL,
	})
	if err != nil {
		return "", fmt.Errorf("render event update email: %w", err)
	}
	return out, nil
}

// FallbackUpdate renders the event-less broadcast body for one recipient.
func (t *Templates) FallbackUpdate(siteName, fallbackLink, unsubscribeURL string) (string, error) {
	out, err := t.fallbackUpdate.RenderString(liquid.Bindings{
		"site_name":       siteName,
		"fallback_link":   fallbackLink,
		"unsubscribe_url": unsubscribeURL,
	})
	if err != nil {
		return "", fmt.Errorf("render fallback update email: %w", err)
	}
	return out, nil
}
