package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
	"github.com/xavierca1/presale-funnel/internal/infra/http/middleware"
)

// Deliverer is one downstream target of a forwarded lead (automation webhook, CRM).
type Deliverer interface {
	Forward(ctx context.Context, lead entity.ForwardedLead) error
}

// Target names a Deliverer for logs and metrics.
type Target struct {
	Name      string
	Deliverer Deliverer
}

// Deduper claims idempotency keys; see cache.ForwardDedup.
type Deduper interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Consumer is satisfied by *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel        Consumer
	Targets        []Target
	Dedup          Deduper
	DeliverTimeout time.Duration
	Logger         *zap.Logger
}

func NewWorker(ch Consumer, dedup Deduper, logger *zap.Logger, targets ...Target) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:        ch,
		Targets:        targets,
		Dedup:          dedup,
		DeliverTimeout: 15 * time.Second,
		Logger:         logger,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("forward worker listening", zap.String("queue", queueName), zap.Int("targets", len(w.Targets)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var lead entity.ForwardedLead
	if err := json.Unmarshal(d.Body, &lead); err != nil || lead.IdempotencyKey == "" {
		w.Logger.Warn("malformed forward message", zap.String("message_id", d.MessageId), zap.Error(err))
		// Unparseable: dead-letter it instead of blocking the queue.
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(
		zap.String("lead_id", lead.LeadID),
		zap.String("event", lead.Event),
		zap.String("idempotency_key", lead.IdempotencyKey))

	if err := w.deliver(ctx, lead, log); err != nil {
		log.Error("forward failed, dead-lettering", zap.Error(err))
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// deliver tries every target and reports all failures together. Each target is claimed
// under its own key, so a replayed message only reaches the targets that failed.
func (w *Worker) deliver(ctx context.Context, lead entity.ForwardedLead, log *zap.Logger) error {
	var errs []error
	for _, t := range w.Targets {
		key := TargetKey(lead.IdempotencyKey, t.Name)
		claimed, skip := w.claim(ctx, key, log)
		if skip {
			log.Info("duplicate forward skipped", zap.String("target", t.Name))
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, w.DeliverTimeout)
		err := t.Deliverer.Forward(tctx, lead)
		cancel()

		if err != nil {
			if claimed {
				if rerr := w.Dedup.Release(context.WithoutCancel(ctx), key); rerr != nil {
					log.Warn("release dedup key", zap.String("target", t.Name), zap.Error(rerr))
				}
			}
			middleware.RecordIntegrationError(t.Name)
			middleware.RecordLeadForwarded(t.Name, "error")
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		middleware.RecordLeadForwarded(t.Name, "ok")
		log.Info("lead delivered", zap.String("target", t.Name))
	}
	return errors.Join(errs...)
}

// claim reports whether key was claimed, and whether the target already received it.
func (w *Worker) claim(ctx context.Context, key string, log *zap.Logger) (claimed, skip bool) {
	if w.Dedup == nil {
		return false, false
	}
	first, err := w.Dedup.Acquire(ctx, key)
	if err != nil {
		// redis down: deliver anyway, downstream also sees the Idempotency-Key header
		middleware.RecordIntegrationError("redis")
		log.Warn("dedup unavailable", zap.Error(err))
		return false, false
	}
	return first, !first
}

// TargetKey is the dedup key of one lead event at one target.
func TargetKey(idempotencyKey, target string) string {
	return idempotencyKey + ":" + target
}
