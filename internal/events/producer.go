package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer writes envelopes to one topic through a buffered inbox so
// publishing never blocks a request handler.
type Producer struct {
	w      *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger *zap.SugaredLogger
}

func NewProducer(brokers []string, topic string, buf int, logger *zap.SugaredLogger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start drains the inbox until ctx is cancelled, then flushes whatever
// is still buffered before closing the writer. The inbox channel is
// never closed: Publish may race with shutdown, and a send on a closed
// channel would panic the process.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.flush()
				if err := p.w.Close(); err != nil {
					p.logger.Errorw("closing kafka writer", "error", err)
				}
				return
			case m := <-p.inbox:
				p.write(ctx, m)
			}
		}
	}()
}

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(context.Background(), m)
		default:
			return
		}
	}
}

// Publish enqueues an envelope keyed for partitioning. Drops the event
// with a log line when the inbox is full or the producer has stopped,
// rather than stalling or crashing the caller.
func (p *Producer) Publish(key string, env Envelope) {
	select {
	case <-p.done:
		p.logger.Errorw("producer stopped, dropping event", "event_type", env.EventType, "key", key)
		return
	default:
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Errorw("marshal event envelope", "event_type", env.EventType, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Errorw("event inbox full, dropping event", "event_type", env.EventType, "key", key)
	}
}

func (p *Producer) write(ctx context.Context, m kafka.Message) {
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Errorw("publishing kafka message", "topic", p.w.Topic, "error", err)
	}
}

// WaitClosed blocks until the drain goroutine has exited.
func (p *Producer) WaitClosed() { <-p.done }
