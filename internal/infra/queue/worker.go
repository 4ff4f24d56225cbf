package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LeadHandler processes one lead.joined event.
type LeadHandler interface {
	Handle(ctx context.Context, payload LeadJoinedPayload) error
}

// Acknowledger is the subset of amqp.Delivery the worker settles.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel *amqp.Channel
	Handler LeadHandler
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, handler LeadHandler, logger *zap.Logger) *Worker {
	return &Worker{Channel: ch, Handler: handler, Logger: logger}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("worker waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handleDelivery(ctx, d.Body, d)
		}
	}
}

// handleDelivery never requeues: failures go to the dead letter queue.
func (w *Worker) handleDelivery(ctx context.Context, body []byte, ack Acknowledger) {
	var payload LeadJoinedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.Logger.Error("malformed lead event", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	if err := w.Handler.Handle(ctx, payload); err != nil {
		w.Logger.Error("lead event failed",
			zap.String("lead_id", payload.LeadID),
			zap.Error(err),
		)
		_ = ack.Nack(false, false)
		return
	}

	w.Logger.Info("lead event processed", zap.String("lead_id", payload.LeadID))
	_ = ack.Ack(false)
}
