package events

import "sync"

// EventType classifies a BroadcastEvent for client-side filtering.
type EventType string

const (
	// EventTypeSignal mirrors a raw Signal onto the wire (keystrokes,
	// stream bytes, clipboard paste, timer ticks).
	EventTypeSignal EventType = "signal"
	// EventTypeTrap reports a trap firing or returning (spec.md section
	// 5's "a trap in progress defers further firings").
	EventTypeTrap EventType = "trap"
	// EventTypeOutput carries console text the interpreter printed.
	EventTypeOutput EventType = "output"
)

// BroadcastEvent is one message fanned out to subscribed renderers.
type BroadcastEvent struct {
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Subscription is a client's filtered view of the broadcast stream.
type Subscription struct {
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans queued interpreter signals out to zero or more
// external renderer processes (a terminal UI, a browser tab) connected
// over a websocket, so the core itself never depends on any particular
// rendering surface (spec.md section 1's scope line: "video/screen
// renderer... [is an] external collaborator"). It follows the same
// register/unregister/broadcast channel fan-out as the rest of this
// codebase's event-driven collaborators.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a broadcaster's fan-out goroutine.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this event rather than block the core
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new client filter; eventTypes empty means all.
func (b *Broadcaster) Subscribe(eventTypes []EventType) *Subscription {
	m := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		m[t] = true
	}
	sub := &Subscription{EventTypes: m, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast queues event for delivery to matching subscribers.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
		// broadcaster overwhelmed; drop rather than block the interpreter
	}
}

// BroadcastSignal fans a raw Signal out as an EventTypeSignal message.
func (b *Broadcaster) BroadcastSignal(s Signal) {
	data := map[string]interface{}{"kind": int(s.Kind), "slot": s.Slot}
	if s.Kind == StreamChar {
		data["byte"] = s.Byte
	}
	if s.Kind == ClipPaste {
		data["text"] = s.Text
	}
	b.Broadcast(BroadcastEvent{Type: EventTypeSignal, Data: data})
}

// BroadcastTrap fans a trap firing or completion out as an
// EventTypeTrap message.
func (b *Broadcaster) BroadcastTrap(kind Kind, slot int, line int, firing bool) {
	b.Broadcast(BroadcastEvent{Type: EventTypeTrap, Data: map[string]interface{}{
		"kind": string(kind), "slot": slot, "line": line, "firing": firing,
	}})
}

// BroadcastOutput fans console text out as an EventTypeOutput message.
func (b *Broadcaster) BroadcastOutput(text string) {
	b.Broadcast(BroadcastEvent{Type: EventTypeOutput, Data: map[string]interface{}{"text": text}})
}

// Close shuts the broadcaster down and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of connected renderers.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
