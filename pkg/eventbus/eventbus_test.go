package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type pinged struct{ N int }

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New[pinged]()
	var got []string

	a := bus.Subscribe(func(_ context.Context, e pinged) { got = append(got, "a") })
	defer a.Close()
	b := bus.Subscribe(func(_ context.Context, e pinged) { got = append(got, "b") })
	defer b.Close()

	bus.Publish(context.Background(), pinged{N: 1})

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestBus_ClosedSubscriptionStopsReceiving(t *testing.T) {
	bus := New[pinged]()
	var seen []int

	sub := bus.Subscribe(func(_ context.Context, e pinged) { seen = append(seen, e.N) })
	bus.Publish(context.Background(), pinged{N: 1})
	sub.Close()
	sub.Close()
	bus.Publish(context.Background(), pinged{N: 2})

	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_HandlerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := New[pinged]()
	calls := 0

	var sub *Subscription
	sub = bus.Subscribe(func(_ context.Context, e pinged) {
		calls++
		sub.Close()
	})

	bus.Publish(context.Background(), pinged{})
	bus.Publish(context.Background(), pinged{})

	assert.Equal(t, 1, calls)
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := New[pinged]()
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := bus.Subscribe(func(_ context.Context, e pinged) {
				mu.Lock()
				total += e.N
				mu.Unlock()
			})
			defer sub.Close()
			bus.Publish(context.Background(), pinged{N: 1})
		}()
	}
	wg.Wait()

	assert.Positive(t, total)
	assert.Equal(t, 0, bus.Len())
}
