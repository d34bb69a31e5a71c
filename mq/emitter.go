package mq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"smartclass/metrics"
	"smartclass/models"
	"smartclass/utils"
)

// Publisher delivers an encoded event to one destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, key string, data []byte) error
	Close() error
}

// Emitter fans domain events out to every configured publisher.
// Delivery is best effort: failures are logged and counted, never returned.
type Emitter struct {
	publishers []Publisher
	log        *slog.Logger
	timeout    time.Duration
	now        func() time.Time
}

func NewEmitter(log *slog.Logger, publishers ...Publisher) *Emitter {
	return &Emitter{publishers: publishers, log: log, timeout: 3 * time.Second, now: time.Now}
}

// Emit stamps and publishes an event. A nil Emitter is a no-op.
func (e *Emitter) Emit(ctx context.Context, eventType, subject, actor string, payload any) {
	if e == nil || len(e.publishers) == 0 {
		return
	}

	event := models.Event{
		ID:      utils.GetUUID(),
		Type:    eventType,
		Subject: subject,
		Actor:   actor,
		Payload: payload,
		At:      e.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error("marshal event", slog.String("type", eventType), slog.Any("error", err))
		return
	}

	// Publishing must not be cut short by the request finishing.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	for _, p := range e.publishers {
		if err := p.Publish(ctx, subject, data); err != nil {
			metrics.EventsDropped.WithLabelValues(p.Name()).Inc()
			e.log.Warn("publish event failed",
				slog.String("publisher", p.Name()),
				slog.String("type", eventType),
				slog.Any("error", err))
		}
	}
	e.log.Debug("event emitted", slog.String("type", eventType), slog.String("subject", subject))
}

// Close closes every publisher.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	for _, p := range e.publishers {
		if err := p.Close(); err != nil {
			e.log.Warn("close publisher", slog.String("publisher", p.Name()), slog.Any("error", err))
		}
	}
}
