// Package kafka provides the inbound command consumer. Each delivery command
// arrives on its own topic as a JSON envelope; the consumer parses it,
// invokes the matching command handler, and acknowledges by committing the
// offset.
//
// Failure handling follows the permanent/transient split. Permanent failures
// (malformed envelopes, validation errors, unknown deliveries, rejected state
// transitions) can never succeed on redelivery: the consumer publishes a
// rejection event for the upstream workflow and commits the offset. Transient
// failures (storage outages, exhausted concurrency retries) leave the offset
// uncommitted and restart the topic's reader, so the broker redelivers the
// command.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// EventTypeOperationRejected is the wire name of the rejection event emitted
// when an inbound command permanently fails.
const EventTypeOperationRejected = "delivery.operation_rejected"

// Rejection codes carried by delivery.operation_rejected events.
const (
	RejectionCodeInvalidCommand         = "invalid_command"
	RejectionCodeNotFound               = "not_found"
	RejectionCodeInvalidStateTransition = "invalid_state_transition"
)

const (
	defaultMaxInFlight    = 4
	defaultRestartBackoff = 5 * time.Second
)

// Config holds the broker connection settings and the per-command topics.
type Config struct {
	Brokers []string
	GroupID string

	StartDeliveryTopic    string
	CompleteDeliveryTopic string
	FailDeliveryTopic     string
	AddRegistrationTopic  string

	// MaxInFlight caps the number of commands processed concurrently across
	// all topics. Zero means defaultMaxInFlight.
	MaxInFlight int

	// RestartBackoff is the pause before a failed topic reader is recreated.
	// Zero means defaultRestartBackoff.
	RestartBackoff time.Duration
}

// Handler interfaces keep the consumer decoupled from the concrete command
// handlers and mockable in tests.
type (
	StartDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.StartDeliveryCommand) error
	}

	CompleteDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.CompleteDeliveryCommand) error
	}

	FailDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.FailDeliveryCommand) error
	}

	AddRegistrationHandler interface {
		Handle(ctx context.Context, cmd commands.AddDeliveryRegistrationCommand) error
	}
)

// Handlers bundles the command handlers the consumer dispatches to.
type Handlers struct {
	StartDelivery    StartDeliveryHandler
	CompleteDelivery CompleteDeliveryHandler
	FailDelivery     FailDeliveryHandler
	AddRegistration  AddRegistrationHandler
}

// commandReader is the part of kafka.Reader the consumer uses. FetchMessage
// and CommitMessages are split so acknowledgment stays an explicit step.
type commandReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type readerFactory func() commandReader

type dispatchFunc func(ctx context.Context, envelope commandEnvelope, corr correlation.Context) error

// binding ties one command topic to its parse-and-handle function.
type binding struct {
	operation string
	newReader readerFactory
	dispatch  dispatchFunc
}

// Consumer consumes delivery commands from their per-command topics.
type Consumer struct {
	bindings       []binding
	publisher      ports.EventPublisher
	logger         *slog.Logger
	sem            chan struct{}
	restartBackoff time.Duration
}

// NewConsumer creates a consumer for the configured command topics. The
// publisher is used for rejection events and is required.
func NewConsumer(cfg Config, handlers Handlers, publisher ports.EventPublisher, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("command consumer requires at least one broker")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("command consumer requires a group id")
	}

	topics := map[string]string{
		"start_delivery":            cfg.StartDeliveryTopic,
		"complete_delivery":         cfg.CompleteDeliveryTopic,
		"fail_delivery":             cfg.FailDeliveryTopic,
		"add_delivery_registration": cfg.AddRegistrationTopic,
	}
	for operation, topic := range topics {
		if topic == "" {
			return nil, fmt.Errorf("command consumer requires a topic for %s", operation)
		}
	}

	bindings := []binding{
		{
			operation: "start_delivery",
			newReader: kafkaReaderFactory(cfg, cfg.StartDeliveryTopic),
			dispatch: func(ctx context.Context, envelope commandEnvelope, corr correlation.Context) error {
				cmd, err := envelope.startDeliveryCommand(corr)
				if err != nil {
					return err
				}
				return handlers.StartDelivery.Handle(ctx, cmd)
			},
		},
		{
			operation: "complete_delivery",
			newReader: kafkaReaderFactory(cfg, cfg.CompleteDeliveryTopic),
			dispatch: func(ctx context.Context, envelope commandEnvelope, corr correlation.Context) error {
				cmd, err := envelope.completeDeliveryCommand(corr)
				if err != nil {
					return err
				}
				return handlers.CompleteDelivery.Handle(ctx, cmd)
			},
		},
		{
			operation: "fail_delivery",
			newReader: kafkaReaderFactory(cfg, cfg.FailDeliveryTopic),
			dispatch: func(ctx context.Context, envelope commandEnvelope, corr correlation.Context) error {
				cmd, err := envelope.failDeliveryCommand(corr)
				if err != nil {
					return err
				}
				return handlers.FailDelivery.Handle(ctx, cmd)
			},
		},
		{
			operation: "add_delivery_registration",
			newReader: kafkaReaderFactory(cfg, cfg.AddRegistrationTopic),
			dispatch: func(ctx context.Context, envelope commandEnvelope, corr correlation.Context) error {
				cmd, err := envelope.addRegistrationCommand(corr)
				if err != nil {
					return err
				}
				return handlers.AddRegistration.Handle(ctx, cmd)
			},
		},
	}

	return newConsumer(bindings, publisher, logger, cfg.MaxInFlight, cfg.RestartBackoff), nil
}

func newConsumer(
	bindings []binding,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	maxInFlight int,
	restartBackoff time.Duration,
) *Consumer {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	if restartBackoff <= 0 {
		restartBackoff = defaultRestartBackoff
	}

	return &Consumer{
		bindings:       bindings,
		publisher:      publisher,
		logger:         logger.With("component", "command_consumer"),
		sem:            make(chan struct{}, maxInFlight),
		restartBackoff: restartBackoff,
	}
}

func kafkaReaderFactory(cfg Config, topic string) readerFactory {
	return func() commandReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  500 * time.Millisecond,
		})
	}
}

// Run consumes all command topics until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, b := range c.bindings {
		wg.Add(1)
		go func(b binding) {
			defer wg.Done()
			c.runBinding(ctx, b)
		}(b)
	}
	wg.Wait()
	return ctx.Err()
}

// runBinding keeps one topic drained, recreating the reader after transient
// failures so uncommitted commands are redelivered.
func (c *Consumer) runBinding(ctx context.Context, b binding) {
	for {
		reader := b.newReader()
		err := c.drain(ctx, b, reader)
		_ = reader.Close()

		if ctx.Err() != nil {
			return
		}

		c.logger.ErrorContext(ctx, "Command reader stopped, restarting",
			"operation", b.operation,
			"backoff", c.restartBackoff.String(),
			"error", err)

		select {
		case <-time.After(c.restartBackoff):
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) drain(ctx context.Context, b binding, reader commandReader) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		c.sem <- struct{}{}
		err = c.handleMessage(ctx, b, msg)
		<-c.sem

		if err != nil {
			// Transient failure: the offset stays uncommitted and the
			// restarted reader redelivers the command.
			return err
		}

		if err = reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// handleMessage processes one command. A nil return means the message is
// finished (handled or permanently rejected) and its offset may be committed.
func (c *Consumer) handleMessage(ctx context.Context, b binding, msg kafka.Message) error {
	var envelope commandEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		c.reject(ctx, b.operation, envelope, RejectionCodeInvalidCommand, err)
		return nil
	}

	corr, hasCorrelation := correlation.FromEnvelope(envelope.CorrelationID, envelope.MessageID)
	if !hasCorrelation {
		c.logger.WarnContext(ctx, "Inbound command carries no correlation id",
			"operation", b.operation,
			"messageId", envelope.MessageID)
	}

	err := b.dispatch(ctx, envelope, corr)
	if err == nil {
		return nil
	}

	code, permanent := classify(err)
	if !permanent {
		return err
	}

	c.logger.InfoContext(ctx, "Command rejected",
		"operation", b.operation,
		"messageId", envelope.MessageID,
		"code", code,
		"reason", err.Error())
	c.reject(ctx, b.operation, envelope, code, err)
	return nil
}

// classify splits handler errors into permanent rejections and transient
// failures. Anything unrecognized is treated as transient so redelivery gets
// another chance.
func classify(err error) (string, bool) {
	switch {
	case errors.Is(err, delivery.ErrInvalidStateTransition):
		return RejectionCodeInvalidStateTransition, true
	case errors.Is(err, errs.ErrObjectNotFound):
		return RejectionCodeNotFound, true
	case errors.Is(err, errs.ErrValueIsRequired), errors.Is(err, errs.ErrValueIsInvalid):
		return RejectionCodeInvalidCommand, true
	default:
		return "", false
	}
}

// operationRejectedEvent tells the upstream workflow that its command was
// permanently rejected and why.
type operationRejectedEvent struct {
	RejectionID string    `json:"rejection_id"`
	MessageID   string    `json:"message_id,omitempty"`
	Operation   string    `json:"operation"`
	DeliveryID  string    `json:"delivery_id,omitempty"`
	Code        string    `json:"code"`
	Reason      string    `json:"reason"`
	RejectedAt  time.Time `json:"rejected_at"`
}

func (c *Consumer) reject(ctx context.Context, operation string, envelope commandEnvelope, code string, cause error) {
	rejectionID := kernel.NewUUID()
	rejectedAt := time.Now().UTC()

	event := operationRejectedEvent{
		RejectionID: rejectionID.String(),
		MessageID:   envelope.MessageID,
		Operation:   operation,
		DeliveryID:  envelope.deliveryID(),
		Code:        code,
		Reason:      cause.Error(),
		RejectedAt:  rejectedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to serialize rejection event", "error", err)
		return
	}

	// The delivery id may be absent or unparsable; the zero identifier keys
	// such rejections onto one partition, which is acceptable for a failure
	// stream.
	deliveryID, _ := kernel.UUIDFromString(event.DeliveryID)

	message := ports.OutboxMessage{
		ID:            rejectionID,
		EventType:     EventTypeOperationRejected,
		DeliveryID:    deliveryID,
		CorrelationID: envelope.CorrelationID,
		CausationID:   envelope.MessageID,
		OccurredAt:    rejectedAt,
		Payload:       payload,
	}

	if err = c.publisher.Publish(ctx, message); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish rejection event",
			"operation", operation,
			"messageId", envelope.MessageID,
			"error", err)
	}
}
