package events

import "sync"

// Kind names an ON-event trap class (spec.md section 5: "ON KEY/TIMER/
// PLAY/COM/STRIG/PEN GOSUB").
type Kind string

const (
	KindKey   Kind = "KEY"
	KindTimer Kind = "TIMER"
	KindCom   Kind = "COM"
	KindPen   Kind = "PEN"
	KindStrig Kind = "STRIG"
	KindPlay  Kind = "PLAY"
)

// slotTrap is one armed trap: a kind/slot pair (e.g. KEY(3), COM(2)) and
// the GOSUB line it fires, plus whether a firing is currently being
// handled (spec.md section 5: "never reentrantly — a trap in progress
// defers further firings of the same event until RETURN").
type slotTrap struct {
	enabled bool
	target  int
	active  bool
	interval float64 // TIMER's period in seconds; unused by other kinds
}

// Registry implements collab.Events, the trap-registration side of the
// event model, and separately exposes Poll/MarkDone for the session
// loop to drive actual firing between statements. The exec package's
// dispatcher only ever calls the collab.Events methods (see exec's
// onEvent); this registry is what remembers the resulting state.
//
// Two calls register one trap: ON KEY(n) GOSUB line first calls Key(n,
// true) to name the slot, then OnEventGosub("KEY", true, line) to attach
// the target. lastSlot records the slot from the first call so the
// second can find it, mirroring that two-call sequence.
type Registry struct {
	mu       sync.Mutex
	traps    map[Kind]map[int]*slotTrap
	lastSlot map[Kind]int
}

// NewRegistry returns an empty trap registry.
func NewRegistry() *Registry {
	return &Registry{
		traps:    make(map[Kind]map[int]*slotTrap),
		lastSlot: make(map[Kind]int),
	}
}

func (reg *Registry) slot(kind Kind, n int) *slotTrap {
	m, ok := reg.traps[kind]
	if !ok {
		m = make(map[int]*slotTrap)
		reg.traps[kind] = m
	}
	t, ok := m[n]
	if !ok {
		t = &slotTrap{}
		m[n] = t
	}
	return t
}

func (reg *Registry) touch(kind Kind, n int, enabled bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.slot(kind, n).enabled = enabled
	reg.lastSlot[kind] = n
}

// Key implements collab.Events: arms/disarms the KEY(n) trap.
func (reg *Registry) Key(slot int, enabled bool) { reg.touch(KindKey, slot, enabled) }

// Timer implements collab.Events: arms/disarms the single TIMER trap,
// remembering its tick interval.
func (reg *Registry) Timer(interval float64, enabled bool) {
	reg.mu.Lock()
	t := reg.slot(KindTimer, 0)
	t.enabled = enabled
	t.interval = interval
	reg.lastSlot[KindTimer] = 0
	reg.mu.Unlock()
}

// Com implements collab.Events: arms/disarms the COM(port) trap.
func (reg *Registry) Com(port int, enabled bool) { reg.touch(KindCom, port, enabled) }

// Pen implements collab.Events: arms/disarms the single PEN trap.
func (reg *Registry) Pen(enabled bool) { reg.touch(KindPen, 0, enabled) }

// Strig implements collab.Events: arms/disarms the STRIG(trigger) trap.
func (reg *Registry) Strig(trigger int, enabled bool) { reg.touch(KindStrig, trigger, enabled) }

// PlayTrap implements collab.Events: arms/disarms the PLAY trap, whose
// slot is the "voices left in queue" threshold GW-BASIC keys it by.
func (reg *Registry) PlayTrap(voicesLeft int, enabled bool) { reg.touch(KindPlay, voicesLeft, enabled) }

// OnEventGosub implements collab.Events: attaches a GOSUB target to the
// slot most recently named for this kind by Key/Timer/Com/Pen/Strig/
// PlayTrap.
func (reg *Registry) OnEventGosub(event string, enabled bool, target int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	kind := Kind(event)
	n := reg.lastSlot[kind]
	t := reg.slot(kind, n)
	t.enabled = enabled
	t.target = target
}

// kindFor maps a raw queue signal to the trap kind and slot it can fire,
// or ok=false if the signal carries no trap (e.g. StreamClosed).
func kindFor(s Signal) (kind Kind, slot int, ok bool) {
	switch s.Kind {
	case KeyDown:
		return KindKey, s.Slot, true
	case TimerTick:
		return KindTimer, 0, true
	case ComReady:
		return KindCom, s.Slot, true
	case PenDown:
		return KindPen, 0, true
	case StrigPressed:
		return KindStrig, s.Slot, true
	case PlayLow:
		return KindPlay, s.Slot, true
	}
	return "", 0, false
}

// Poll looks at the signal at the head of q. If its matching trap is
// enabled and not already active, Poll removes it from q, arms the trap
// (active=true) and returns its GOSUB target. Otherwise (an empty
// queue, a signal with no trap kind such as a stream byte, or a trap
// that is unarmed, disabled or already in progress) it returns
// ok=false and leaves q unchanged, so the signal stays queued for its
// other consumers. Matches spec.md section 5: event traps fire between
// statements and never reentrantly.
func (reg *Registry) Poll(q *Queue) (kind Kind, slot int, line int, ok bool) {
	for {
		s, has := q.Peek()
		if !has {
			return "", 0, 0, false
		}
		k, n, isTrap := kindFor(s)
		if !isTrap {
			return "", 0, 0, false
		}
		reg.mu.Lock()
		t, armed := reg.traps[k][n]
		if !armed || !t.enabled || t.active {
			reg.mu.Unlock()
			return "", 0, 0, false
		}
		t.active = true
		line = t.target
		reg.mu.Unlock()
		q.Pop()
		return k, n, line, true
	}
}

// MarkDone clears a trap's in-progress flag, to be called by the
// session loop when RETURN unwinds the GOSUB frame Poll armed — letting
// further firings of the same event through again.
func (reg *Registry) MarkDone(kind Kind, slot int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if t, ok := reg.traps[kind][slot]; ok {
		t.active = false
	}
}

// TimerInterval reports the registered TIMER trap's tick period, or 0 if
// none is armed, for a ticker goroutine to schedule TimerTick signals.
func (reg *Registry) TimerInterval() float64 {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if t, ok := reg.traps[KindTimer][0]; ok && t.enabled {
		return t.interval
	}
	return 0
}
