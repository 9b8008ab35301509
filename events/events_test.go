package events

import (
	"testing"
	"time"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Push(Signal{Kind: KeyDown, Slot: 1})
	q.Push(Signal{Kind: KeyDown, Slot: 2})

	first, ok := q.Pop()
	if !ok || first.Slot != 1 {
		t.Fatalf("expected slot 1 first, got %+v ok=%v", first, ok)
	}
	second, ok := q.Pop()
	if !ok || second.Slot != 2 {
		t.Fatalf("expected slot 2 second, got %+v ok=%v", second, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected queue empty")
	}
}

func TestRegistryArmsTrapOnTwoCallSequence(t *testing.T) {
	reg := NewRegistry()
	reg.Key(3, true)
	reg.OnEventGosub("KEY", true, 500)

	q := NewQueue()
	q.Push(Signal{Kind: KeyDown, Slot: 3})

	kind, slot, line, ok := reg.Poll(q)
	if !ok || kind != KindKey || slot != 3 || line != 500 {
		t.Fatalf("expected KEY(3) trap to fire to line 500, got kind=%v slot=%d line=%d ok=%v", kind, slot, line, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected Poll to consume the signal")
	}
}

func TestRegistryDefersReentrantFiring(t *testing.T) {
	reg := NewRegistry()
	reg.Timer(1.0, true)
	reg.OnEventGosub("TIMER", true, 1000)

	q := NewQueue()
	q.Push(Signal{Kind: TimerTick})
	if _, _, _, ok := reg.Poll(q); !ok {
		t.Fatalf("expected first tick to fire")
	}

	q.Push(Signal{Kind: TimerTick})
	if _, _, _, ok := reg.Poll(q); ok {
		t.Fatalf("expected second tick to be deferred while trap is active")
	}

	reg.MarkDone(KindTimer, 0)
	if _, _, _, ok := reg.Poll(q); !ok {
		t.Fatalf("expected tick to fire again after MarkDone")
	}
}

func TestRegistryIgnoresUnarmedSignal(t *testing.T) {
	reg := NewRegistry()
	q := NewQueue()
	q.Push(Signal{Kind: KeyDown, Slot: 9})
	if _, _, _, ok := reg.Poll(q); ok {
		t.Fatalf("expected no trap to fire when none is registered")
	}
}

func TestBroadcasterFiltersByEventType(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe([]EventType{EventTypeTrap})
	defer b.Unsubscribe(sub)

	b.BroadcastOutput("hello")
	b.BroadcastTrap(KindKey, 1, 500, true)

	select {
	case ev := <-sub.Channel:
		if ev.Type != EventTypeTrap {
			t.Fatalf("expected only trap events, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for trap event")
	}
}
