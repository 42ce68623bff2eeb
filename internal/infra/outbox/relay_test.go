//go:build unit

package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"rental-backend/internal/infra/outbox"
	"rental-backend/internal/usecase/shared"
	sharedmock "rental-backend/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakePublisher struct {
	calls []published
	fail  map[string]error
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if err, ok := p.fail[key]; ok {
		return err
	}
	p.calls = append(p.calls, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func setupTx(ctrl *gomock.Controller) (*sharedmock.MockUnitOfWork, *sharedmock.MockNotificationRepository) {
	uow := sharedmock.NewMockUnitOfWork(ctrl)
	tx := sharedmock.NewMockTx(ctrl)
	notifications := sharedmock.NewMockNotificationRepository(ctrl)

	tx.EXPECT().Notifications().Return(notifications).AnyTimes()
	tx.EXPECT().DB().Return(nil).AnyTimes()
	uow.EXPECT().Within(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, tx)
		})
	return uow, notifications
}

func TestRelay_RunOnce(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	okID := uuid.New()
	failingID := uuid.New()
	jobs := []shared.NotificationJob{
		{ID: okID, Kind: shared.EventBookingCreated, Topic: "booking", Payload: []byte(`{"bookingId":"b-1"}`), RunAt: runAt},
		{ID: failingID, Kind: shared.EventBookingConfirmed, Topic: "booking", Payload: []byte(`{"bookingId":"b-2"}`), RunAt: runAt, Attempts: 2},
	}

	t.Run("publishes due jobs and records failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uow, notifications := setupTx(ctrl)
		publisher := &fakePublisher{fail: map[string]error{"b-2": errors.New("broker down")}}

		notifications.EXPECT().ClaimQueued(gomock.Any(), gomock.Any(), int32(10)).Return(jobs, nil)
		notifications.EXPECT().MarkSent(gomock.Any(), gomock.Any(), okID).Return(nil)
		notifications.EXPECT().MarkFailed(gomock.Any(), gomock.Any(), failingID, "broker down", int32(3)).Return(nil)

		relay := outbox.NewRelay(uow, publisher, logger, "rental.", outbox.WithBatchSize(10), outbox.WithMaxAttempts(3))
		sent, err := relay.RunOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, publisher.calls, 1)

		call := publisher.calls[0]
		assert.Equal(t, "rental.booking.events.v1", call.topic)
		assert.Equal(t, "b-1", call.key)
		assert.Equal(t, "application/cloudevents+json", call.headers["content-type"])

		var evt map[string]any
		require.NoError(t, json.Unmarshal(call.payload, &evt))
		assert.Equal(t, okID.String(), evt["id"])
		assert.Equal(t, "booking_created.v1", evt["type"])
		assert.Equal(t, "2025-06-01T12:00:00Z", evt["time"])
		assert.Equal(t, map[string]any{"bookingId": "b-1"}, evt["data"])
	})

	t.Run("redelivered job keeps its event id", func(t *testing.T) {
		publisher := &fakePublisher{}
		for attempt := 0; attempt < 2; attempt++ {
			ctrl := gomock.NewController(t)
			uow, notifications := setupTx(ctrl)
			notifications.EXPECT().ClaimQueued(gomock.Any(), gomock.Any(), gomock.Any()).Return(jobs[:1], nil)
			notifications.EXPECT().MarkSent(gomock.Any(), gomock.Any(), okID).Return(nil)

			_, err := outbox.NewRelay(uow, publisher, logger, "").RunOnce(ctx)
			require.NoError(t, err)
		}

		require.Len(t, publisher.calls, 2)
		ids := make([]any, 0, 2)
		for _, call := range publisher.calls {
			var evt map[string]any
			require.NoError(t, json.Unmarshal(call.payload, &evt))
			ids = append(ids, evt["id"])
		}
		assert.Equal(t, []any{okID.String(), okID.String()}, ids)
	})

	t.Run("undecodable payload is marked failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uow, notifications := setupTx(ctrl)
		badID := uuid.New()

		notifications.EXPECT().ClaimQueued(gomock.Any(), gomock.Any(), int32(50)).
			Return([]shared.NotificationJob{{ID: badID, Kind: "x", Topic: "booking", Payload: []byte("not json")}}, nil)
		notifications.EXPECT().MarkFailed(gomock.Any(), gomock.Any(), badID, gomock.Any(), int32(5)).Return(nil)

		relay := outbox.NewRelay(uow, &fakePublisher{}, logger, "")
		sent, err := relay.RunOnce(ctx)

		require.NoError(t, err)
		assert.Zero(t, sent)
	})

	t.Run("claim failure aborts the batch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uow, notifications := setupTx(ctrl)

		notifications.EXPECT().ClaimQueued(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		relay := outbox.NewRelay(uow, &fakePublisher{}, logger, "")
		_, err := relay.RunOnce(ctx)

		assert.Error(t, err)
	})

	t.Run("missing publisher", func(t *testing.T) {
		relay := outbox.NewRelay(nil, nil, logger, "")
		_, err := relay.RunOnce(ctx)

		assert.ErrorIs(t, err, outbox.ErrRelayNotConfigured)
	})
}
