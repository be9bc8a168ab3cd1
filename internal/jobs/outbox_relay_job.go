package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// PendingDispatcher publishes staged outbox messages that were not dispatched
// inline after their transaction committed.
type PendingDispatcher interface {
	DispatchPending(ctx context.Context, limit int) (int, error)
}

// OutboxRelayJob re-publishes undispatched outbox messages on a schedule.
// It is the safety net behind the inline dispatch: whenever the broker was
// unavailable at commit time, the relay delivers the event on a later run.
type OutboxRelayJob struct {
	dispatcher PendingDispatcher
	batchSize  int
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewOutboxRelayJob creates a relay publishing up to batchSize messages per
// run, every five seconds.
func NewOutboxRelayJob(dispatcher PendingDispatcher, batchSize int, logger *slog.Logger) *OutboxRelayJob {
	return &OutboxRelayJob{
		dispatcher: dispatcher,
		batchSize:  batchSize,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay job to run every five seconds.
func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		ctx := context.Background()

		published, err := j.dispatcher.DispatchPending(ctx, j.batchSize)
		if err != nil {
			// Remaining messages stay staged and the next run retries them.
			j.logger.ErrorContext(ctx, "Outbox relay run failed",
				"published", published,
				"error", err)
			return
		}

		if published > 0 {
			j.logger.InfoContext(ctx, "Outbox relay published staged events", "published", published)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every five seconds)")
	return nil
}

// Stop stops the relay job.
func (j *OutboxRelayJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
