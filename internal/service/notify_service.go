package service

import (
	"context"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/metrics"
	"topup-pro/internal/worker"

	"github.com/rs/zerolog"
)

// channelTimeout bounds one channel's delivery attempt.
const channelTimeout = 10 * time.Second

// NotificationDispatcherImpl fans notifications out over a bounded
// worker pool. Every channel is an independent task: one channel
// failing or hanging never blocks the others, and nothing here can fail
// a reconciliation.
type NotificationDispatcherImpl struct {
	channels []ports.Notifier
	pool     *worker.Pool
	log      zerolog.Logger
}

// NewNotificationDispatcher creates a dispatcher over the given channels.
func NewNotificationDispatcher(pool *worker.Pool, log zerolog.Logger, channels ...ports.Notifier) *NotificationDispatcherImpl {
	return &NotificationDispatcherImpl{
		channels: channels,
		pool:     pool,
		log:      log,
	}
}

// Dispatch submits one delivery task per channel and returns
// immediately. Failures are logged and counted, never propagated.
func (d *NotificationDispatcherImpl) Dispatch(n domain.Notification) {
	for _, ch := range d.channels {
		ch := ch
		d.pool.Submit(func() {
			ctx, cancel := context.WithTimeout(context.Background(), channelTimeout)
			defer cancel()

			if err := ch.Send(ctx, n); err != nil {
				metrics.NotificationsTotal.WithLabelValues(ch.Name(), "error").Inc()
				d.log.Warn().
					Err(err).
					Str("channel", ch.Name()).
					Str("reference", n.Reference).
					Str("user_id", n.UserID.String()).
					Msg("notification delivery failed")
				return
			}
			metrics.NotificationsTotal.WithLabelValues(ch.Name(), "ok").Inc()
			d.log.Debug().
				Str("channel", ch.Name()).
				Str("reference", n.Reference).
				Msg("notification delivered")
		})
	}
}
