package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	streamName    = "CATALOG"
	searchSubject = "catalog.search"
)

// SearchEvent records one executed catalog query for search analytics.
type SearchEvent struct {
	EventID    string    `json:"eventId"`
	Query      string    `json:"query"`
	CacheKey   string    `json:"cacheKey"`
	Results    int64     `json:"results"`
	DurationMS int64     `json:"durationMs"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits search analytics events to JetStream. A nil Publisher is
// valid and publishes nothing, so the service runs without NATS configured.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"catalog.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "events"),
	}, nil
}

// PublishSearch emits the event asynchronously; analytics must never slow
// down or fail a catalog request.
func (p *Publisher) PublishSearch(query, cacheKey string, results int64, duration time.Duration) {
	if p == nil {
		return
	}
	event := SearchEvent{
		EventID:    uuid.New().String(),
		Query:      query,
		CacheKey:   cacheKey,
		Results:    results,
		DurationMS: duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}

	go func() {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to encode search event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := p.js.Publish(ctx, searchSubject, payload); err != nil {
			p.logger.WithError(err).Warn("Failed to publish search event")
		}
	}()
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
