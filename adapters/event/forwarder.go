package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/pkg/eventbus"
	"github.com/khoahotran/superleader/pkg/logger"
)

type Sink interface {
	Publish(ctx context.Context, evt event.Event) error
}

const (
	forwardBuffer  = 256
	forwardTimeout = 5 * time.Second
)

// Forwarder relays bus events to a Sink on its own goroutine so request
// handlers never wait on the broker. Events are dropped when the buffer is full.
type Forwarder struct {
	sink  Sink
	log   logger.Logger
	sub   *eventbus.Subscription
	queue chan event.Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewForwarder(bus *eventbus.Bus[event.Event], sink Sink, log logger.Logger) *Forwarder {
	f := &Forwarder{
		sink:  sink,
		log:   log,
		queue: make(chan event.Event, forwardBuffer),
		done:  make(chan struct{}),
	}
	f.sub = bus.Subscribe(f.enqueue)
	go f.run()
	return f
}

func (f *Forwarder) enqueue(_ context.Context, evt event.Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- evt:
	default:
		f.log.Warn("Event queue full, dropping event",
			zap.String("event_id", evt.ID.String()), zap.String("event_type", string(evt.Type)))
	}
}

func (f *Forwarder) run() {
	defer close(f.done)
	for evt := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
		if err := f.sink.Publish(ctx, evt); err != nil {
			f.log.Error("Failed to forward event", err,
				zap.String("event_id", evt.ID.String()), zap.String("event_type", string(evt.Type)))
		}
		cancel()
	}
}

// Close stops accepting events, drains what is queued and waits for the
// goroutine to exit.
func (f *Forwarder) Close() {
	f.sub.Close()
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()
	<-f.done
}
