package events

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus"
)

func TestPublishSubscribe(t *testing.T) {
	c := qt.New(t)
	bus := NewBus(prometheus.NewRegistry())

	id, ch := bus.Subscribe(CampaignLaunched)
	defer bus.Unsubscribe(CampaignLaunched, id)

	bus.Publish(CampaignLaunched, map[string]uint64{"id": 1})
	// an event of another type must not be delivered here
	bus.Publish(OrderCreated, map[string]uint64{"id": 9})

	select {
	case ev := <-ch:
		c.Assert(ev.Type, qt.Equals, CampaignLaunched)
		c.Assert(ev.Data, qt.DeepEquals, map[string]uint64{"id": 1})
	case <-time.After(time.Second):
		c.Fatal("no event delivered")
	}

	select {
	case ev := <-ch:
		c.Fatalf("unexpected event: %v", ev)
	default:
	}
}

func TestPublishNonBlocking(t *testing.T) {
	c := qt.New(t)
	bus := NewBus(nil)

	id, _ := bus.Subscribe(SwapExecuted)
	defer bus.Unsubscribe(SwapExecuted, id)

	// publish beyond the queue size; must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueSize*2; i++ {
			bus.Publish(SwapExecuted, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.Fatal("publish blocked on a saturated subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := qt.New(t)
	bus := NewBus(nil)

	id, ch := bus.Subscribe(OrderFilled)
	bus.Unsubscribe(OrderFilled, id)

	_, open := <-ch
	c.Assert(open, qt.IsFalse)
}
