package broadcast

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/techmoncton/hive/internal/config"
	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/mailer"
	"github.com/techmoncton/hive/internal/pkg/logger"
)

const defaultWorkers = 8

// SubscriberSource lists the broadcast audience.
type SubscriberSource interface {
	ListVerified(ctx context.Context) ([]domain.Subscriber, error)
}

// EventSource yields the next upcoming event, if the feed has one.
type EventSource interface {
	NextEvent(ctx context.Context) (domain.Event, bool)
}

// Service fans event updates out to the verified audience.
type Service struct {
	subscribers SubscriberSource
	events      EventSource
	sender      mailer.Sender
	templates   *mailer.Templates
	site        config.SiteConfig

	fallbackLink string
	workers      int
}

// NewService creates a broadcast service. cfg.Workers bounds sender
// concurrency; zero means the default pool size.
func NewService(subscribers SubscriberSource, events EventSource, sender mailer.Sender, templates *mailer.Templates, site config.SiteConfig, cfg config.BroadcastConfig) *Service {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		subscribers:  subscribers,
		events:       events,
		sender:       sender,
		templates:    templates,
		site:         site,
		fallbackLink: cfg.FallbackLink,
		workers:      workers,
	}
}

// SendUpdate runs one broadcast: pick the content, list the audience, fan out.
// The returned tally counts per-recipient outcomes; a failed recipient never
// aborts the run. ErrNoRecipients and ErrNothingToSend mean nothing was sent.
func (s *Service) SendUpdate(ctx context.Context) (*domain.DeliveryTally, error) {
	subs, err := s.subscribers.ListVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list verified subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrNoRecipients
	}

	ev, ok := s.events.NextEvent(ctx)
	if !ok && s.fallbackLink == "" {
		return nil, ErrNothingToSend
	}

	var subject string
	if ok {
		subject = fmt.Sprintf("Upcoming Event: %s", ev.Topic)
	} else {
		subject = fmt.Sprintf("%s Update", s.site.Name)
	}

	var sent, failed int64
	jobs := make(chan domain.Subscriber)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				if err := s.sendOne(ctx, sub, subject, ev, ok); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Warn("broadcast delivery failed", "recipient", sub.Email, "error", err.Error())
					continue
				}
				atomic.AddInt64(&sent, 1)
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	tally := &domain.DeliveryTally{
		Sent:   int(atomic.LoadInt64(&sent)),
		Failed: int(atomic.LoadInt64(&failed)),
	}
	if ok {
		tally.EventTopic = ev.Topic
	}

	logger.Info("broadcast complete", "sent", tally.Sent, "failed", tally.Failed, "subject", subject)
	return tally, nil
}

// sendOne renders and sends the update for a single recipient. The body is
// per-recipient because the unsubscribe link carries their token.
func (s *Service) sendOne(ctx context.Context, sub domain.Subscriber, subject string, ev domain.Event, hasEvent bool) error {
	unsubscribeURL := s.site.UnsubscribeURL(sub.VerificationToken)

	var html string
	var err error
	if hasEvent {
		eventsURL := s.site.URL + s.site.LinkPrefix + "/events"
		html, err = s.templates.EventUpdate(s.site.Name, ev, eventsURL, unsubscribeURL)
	} else {
		html, err = s.templates.FallbackUpdate(s.site.Name, s.fallbackLink, unsubscribeURL)
	}
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, mailer.Message{
		To:      sub.Email,
		Subject: subject,
		HTML:    html,
	})
}
