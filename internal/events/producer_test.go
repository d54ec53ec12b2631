package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProducer() *Producer {
	return NewProducer([]string{"localhost:0"}, TopicOrderPaid, 4, zap.NewNop().Sugar())
}

func TestProducer_PublishAfterShutdown(t *testing.T) {
	p := newTestProducer()
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	env, err := NewEnvelope(EventOrderPaid, "1", OrderPaidPayload{OrderID: 1})
	require.NoError(t, err)

	// A late webhook can still call Publish while the process winds
	// down; the event is dropped, never a panic.
	require.NotPanics(t, func() { p.Publish("1", env) })
	require.Empty(t, p.inbox)
}

func TestProducer_WaitClosedReturnsAfterCancel(t *testing.T) {
	p := newTestProducer()
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain goroutine did not exit after cancel")
	}
}
