package broker

import "sync"

// EventBroker delivers every published payload to every current
// subscriber. Subscribers that fall behind have events dropped rather
// than blocking the publisher, so a stalled consumer can never wedge the
// rest of the system.
//
// This kind of broker is useful for pushing game events through SSE. The
// producer is the game session reacting to player actions; each open
// event-stream request is one subscriber. A dropped event only delays a
// client until the next one arrives, since every event carries the full
// current state.
type EventBroker[TPayload any] struct {
	buffer             int
	stopOnce           sync.Once
	stopChannel        chan struct{}
	publishChannel     chan TPayload
	subscribeChannel   chan chan TPayload
	unsubscribeChannel chan chan TPayload
}

// NewEventBroker creates a new EventBroker and returns it without starting
// it. Use Start() in a goroutine and Stop() to stop it. buffer sets each
// subscriber's channel capacity; events beyond it are dropped.
func NewEventBroker[TPayload any](buffer int) *EventBroker[TPayload] {
	broker := EventBroker[TPayload]{
		buffer:             buffer,
		stopOnce:           sync.Once{},
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan TPayload),
		subscribeChannel:   make(chan chan TPayload),
		unsubscribeChannel: make(chan chan TPayload),
	}
	return &broker
}

// Start listening for publish, subscribe, and unsubscribe events. This
// function blocks until Stop() is called, so it should be called in a
// goroutine.
func (b *EventBroker[TPayload]) Start() {
	subscribers := map[chan TPayload]struct{}{}
	for {
		select {
		case <-b.stopChannel:
			for subscriber := range subscribers {
				close(subscriber)
			}
			return

		case subscriber := <-b.subscribeChannel:
			subscribers[subscriber] = struct{}{}

		case subscriber := <-b.unsubscribeChannel:
			if _, ok := subscribers[subscriber]; ok {
				delete(subscribers, subscriber)
				close(subscriber)
			}

		case payload := <-b.publishChannel:
			for subscriber := range subscribers {
				select {
				case subscriber <- payload:
				default:
					// Subscriber is not keeping up. Drop the event so the
					// other streams keep flowing.
				}
			}
		}
	}
}

// Stop the goroutine that handles the broker and close every remaining
// subscriber channel. Stop is safe to call more than once.
func (b *EventBroker[TPayload]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopChannel)
	})
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is closed on Unsubscribe or Stop. Subscribing after Stop returns a channel
// that is already closed.
func (b *EventBroker[TPayload]) Subscribe() chan TPayload {
	subscriber := make(chan TPayload, b.buffer)
	select {
	case b.subscribeChannel <- subscriber:
	case <-b.stopChannel:
		close(subscriber)
	}
	return subscriber
}

// Unsubscribe removes the subscriber and closes its channel. Unsubscribing
// a channel that is not registered is a no-op.
func (b *EventBroker[TPayload]) Unsubscribe(subscriber chan TPayload) {
	select {
	case b.unsubscribeChannel <- subscriber:
	case <-b.stopChannel:
	}
}

// Publish delivers the payload to every current subscriber. After Stop it
// is a no-op, so late producers cannot block on a dead broker.
func (b *EventBroker[TPayload]) Publish(payload TPayload) {
	select {
	case b.publishChannel <- payload:
	case <-b.stopChannel:
	}
}
