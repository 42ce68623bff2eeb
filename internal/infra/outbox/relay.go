package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rental-backend/internal/pkg/errs"
	"rental-backend/internal/usecase/shared"

)

const (
	defaultBatchSize   int32 = 50
	defaultMaxAttempts int32 = 5
	eventSource              = "app://rental-backend"
)

var ErrRelayNotConfigured = errs.New("outbox: relay missing dependencies")

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

type Relay struct {
	uow         shared.UnitOfWork
	publisher   Publisher
	logger      *slog.Logger
	topicPrefix string
	batchSize   int32
	maxAttempts int32
}

type RelayOption func(*Relay)

func WithBatchSize(n int32) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithMaxAttempts(n int32) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func NewRelay(uow shared.UnitOfWork, publisher Publisher, logger *slog.Logger, topicPrefix string, opts ...RelayOption) *Relay {
	r := &Relay{
		uow:         uow,
		publisher:   publisher,
		logger:      logger,
		topicPrefix: topicPrefix,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce claims due jobs, publishes them and records the outcome in the same transaction.
// It returns the number of jobs published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	if r.uow == nil || r.publisher == nil {
		return 0, ErrRelayNotConfigured
	}

	sent := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		jobs, err := tx.Notifications().ClaimQueued(ctx, tx.DB(), r.batchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if pubErr := r.publish(ctx, job); pubErr != nil {
				r.logger.Warn("outbox publish failed",
					"job_id", job.ID,
					"kind", job.Kind,
					"attempts", job.Attempts+1,
					"error", pubErr.Error())
				if err := tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID, pubErr.Error(), r.maxAttempts); err != nil {
					return err
				}
				continue
			}
			if err := tx.Notifications().MarkSent(ctx, tx.DB(), job.ID); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "relay outbox jobs")
	}
	return sent, nil
}

func (r *Relay) publish(ctx context.Context, job shared.NotificationJob) error {
	payload, key, err := r.formatPayload(job)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"ce-type":      job.Kind + ".v1",
	}
	return r.publisher.Publish(ctx, r.topicFor(job.Topic), key, payload, headers)
}

func (r *Relay) formatPayload(job shared.NotificationJob) ([]byte, string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(job.Payload, &data); err != nil {
		return nil, "", errs.Wrap(err, "decode job payload")
	}

	key := job.ID.String()
	if id, ok := data["bookingId"].(string); ok && id != "" {
		key = id
	}

	evt := map[string]any{
		"specversion":     "1.0",
		"id":              job.ID.String(),
		"type":            job.Kind + ".v1",
		"source":          eventSource,
		"time":            job.RunAt.UTC().Format(time.RFC3339),
		"datacontenttype": "application/json",
		"data":            data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, "", err
	}
	return payload, key, nil
}

func (r *Relay) topicFor(topic string) string {
	return r.topicPrefix + topic + ".events.v1"
}
