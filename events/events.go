// Package events provides the append-only notification stream emitted by
// the core on every state transition. Consumers (indexers, UIs) subscribe
// to event types; the core never depends on any consumer: publishing to a
// saturated subscriber drops the event for that subscriber with a warning
// instead of blocking the operation that emitted it.
package events

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crowdveil/crowdveil/log"
)

type Type string

const (
	CampaignLaunched   Type = "campaign.launched"
	BackingReceived    Type = "campaign.backing"
	FundingFinalized   Type = "campaign.finalized"
	CampaignCancelled  Type = "campaign.cancelled"
	VestingCreated     Type = "campaign.vesting.created"
	RewardClaimed      Type = "campaign.reward.claimed"
	RefundClaimed      Type = "campaign.refund.claimed"
	DecryptAuthorized  Type = "campaign.decrypt.authorized"
	PoolCreated        Type = "exchange.pool.created"
	PoolPaused         Type = "exchange.pool.paused"
	PoolResumed        Type = "exchange.pool.resumed"
	LiquidityAdded     Type = "exchange.liquidity.added"
	LiquidityRemoved   Type = "exchange.liquidity.removed"
	SwapExecuted       Type = "exchange.swap.executed"
	OrderCreated       Type = "exchange.order.created"
	OrderFilled        Type = "exchange.order.filled"
	OrderCancelled     Type = "exchange.order.cancelled"
	OrderExpired       Type = "exchange.order.expired"
	CreatorRegistered  Type = "registry.creator.registered"
	CampaignVerified   Type = "registry.campaign.verified"
	ReputationChanged  Type = "registry.reputation.changed"
	RoleGranted        Type = "registry.role.granted"
	RoleRevoked        Type = "registry.role.revoked"
)

// Event is one notification. Data carries the event-specific payload, a
// struct or map with the relevant ids, actor and amounts-or-commitments.
type Event struct {
	Timestamp time.Time
	Data      any
	Type      Type
}

type SubscriberID int

const subscriberQueueSize = 64

// Bus is a publish/subscribe fan-out for Events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type]map[SubscriberID]chan Event
	lastID      SubscriberID
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

// NewBus creates a Bus. The prometheus registerer may be nil to disable
// metrics.
func NewBus(promRegistry prometheus.Registerer) *Bus {
	b := &Bus{
		subscribers: make(map[Type]map[SubscriberID]chan Event),
	}
	if promRegistry != nil {
		b.published = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdveil_events_published_total",
			Help: "Number of events published, by type",
		}, []string{"type"})
		b.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdveil_events_dropped_total",
			Help: "Number of events dropped due to saturated subscribers, by type",
		}, []string{"type"})
		promRegistry.MustRegister(b.published, b.dropped)
	}
	return b
}

// Subscribe registers interest in an event type and returns the id and the
// delivery channel.
func (b *Bus) Subscribe(t Type) (SubscriberID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	id := b.lastID
	if b.subscribers[t] == nil {
		b.subscribers[t] = make(map[SubscriberID]chan Event)
	}
	ch := make(chan Event, subscriberQueueSize)
	b.subscribers[t][id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(t Type, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subscribers[t]; ok {
		if ch, ok := subs[id]; ok {
			close(ch)
			delete(subs, id)
		}
	}
}

// Publish delivers an event to every subscriber of its type. Delivery is
// best-effort and non-blocking.
func (b *Bus) Publish(t Type, data any) {
	ev := Event{Type: t, Timestamp: time.Now(), Data: data}
	if b.published != nil {
		b.published.WithLabelValues(string(t)).Inc()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subscribers[t] {
		select {
		case ch <- ev:
		default:
			if b.dropped != nil {
				b.dropped.WithLabelValues(string(t)).Inc()
			}
			log.Warnw("event subscriber queue full, dropping event",
				"type", string(t), "subscriber", int(id))
		}
	}
}
