package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/techmoncton/hive/internal/domain"
)

func TestResendSender_Send(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResendSender("re_test", "Tech Moncton <noreply@monctontechhive.ca>", 5*time.Second)
	s.endpoint = srv.URL

	err := s.Send(context.Background(), Message{
		To:      "sub@example.com",
		Subject: "Verify your subscription",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer re_test" {
		t.Errorf("Authorization = %q, want bearer key", gotAuth)
	}
	if !strings.Contains(gotBody, `"to":"sub@example.com"`) {
		t.Errorf("request body missing recipient: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"from":"Tech Moncton <noreply@monctontechhive.ca>"`) &&
		!strings.Contains(gotBody, "noreply@monctontechhive.ca") {
		t.Errorf("request body missing from address: %s", gotBody)
	}
}

func TestResendSender_Send_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewResendSender("re_test", "noreply@monctontechhive.ca", 5*time.Second)
	s.endpoint = srv.URL

	err := s.Send(context.Background(), Message{To: "sub@example.com"})
	if err == nil {
		t.Fatal("expected error on 422 response")
	}

	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error is %T, want *DeliveryError", err)
	}
	if de.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", de.Status)
	}
}

func TestLogSender_AlwaysSucceeds(t *testing.T) {
	s := NewLogSender()
	if err := s.Send(context.Background(), Message{To: "anyone@example.com"}); err != nil {
		t.Fatalf("LogSender.Send: %v", err)
	}
}

func TestTemplates_Verification(t *testing.T) {
	tpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}

	html, err := tpl.Verification("Tech Moncton",
		"https://monctontechhive.ca/en/verify?token=tok",
		"https://monctontechhive.ca/en/unsubscribe?token=tok")
	if err != nil {
		t.Fatalf("Verification: %v", err)
	}

	for _, want := range []string{
		"Tech Moncton",
		"https://monctontechhive.ca/en/verify?token=tok",
		"https://monctontechhive.ca/en/unsubscribe?token=tok",
		"Verify Email",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("verification email missing %q", want)
		}
	}
}

func TestTemplates_EventUpdate_EscapesFeedValues(t *testing.T) {
	tpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}

	ev := domain.Event{
		Date:         "2025-06-18",
		Time:         "6:00 PM",
		Topic:        `Intro to <script>alert("Go")</script>`,
		Presentation: "Jane Doe",
	}

	html, err := tpl.EventUpdate("Tech Moncton", ev,
		"https://monctontechhive.ca/en/events",
		"https://monctontechhive.ca/en/unsubscribe?token=tok")
	if err != nil {
		t.Fatalf("EventUpdate: %v", err)
	}

	if strings.Contains(html, "<script>") {
		t.Error("feed topic was not escaped")
	}
	if !strings.Contains(html, "Jane Doe") {
		t.Error("speaker missing from body")
	}
	if !strings.Contains(html, "Wednesday, June 18, 2025") {
		t.Errorf("formatted date missing from body:\n%s", html)
	}
}

func TestTemplates_FallbackUpdate(t *testing.T) {
	tpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}

	html, err := tpl.FallbackUpdate("Tech Moncton",
		"https://monctontechhive.ca/en/events",
		"https://monctontechhive.ca/en/unsubscribe?token=tok")
	if err != nil {
		t.Fatalf("FallbackUpdate: %v", err)
	}

	if !strings.Contains(html, "Learn More") {
		t.Error("fallback email missing call to action")
	}
	if !strings.Contains(html, "unsubscribe?token=tok") {
		t.Error("fallback email missing unsubscribe link")
	}
}
