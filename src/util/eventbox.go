package util

import "sync"

// EventType is the type for terminal coordination events
type EventType int

// Events is a type that associates EventType to any data
type Events map[EventType]interface{}

// EventBox is a condition-variable-backed mailbox used to hand requests
// (resize, redraw, quit) from the input and signal goroutines to the main
// loop, which is the only goroutine allowed to touch the control tree.
type EventBox struct {
	events Events
	cond   *sync.Cond
}

// NewEventBox returns a new EventBox
func NewEventBox() *EventBox {
	return &EventBox{
		events: make(Events),
		cond:   sync.NewCond(&sync.Mutex{})}
}

// Wait blocks the goroutine until at least one event is set
func (b *EventBox) Wait(callback func(*Events)) {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	if len(b.events) == 0 {
		b.cond.Wait()
	}

	callback(&b.events)
}

// Set turns on the event type on the box
func (b *EventBox) Set(event EventType, value interface{}) {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()
	b.events[event] = value
	b.cond.Broadcast()
}

// Clear clears the events
// Unsynchronized; should be called within Wait routine
func (events *Events) Clear() {
	for event := range *events {
		delete(*events, event)
	}
}

// Peek peeks at the event box if the given event is set
func (b *EventBox) Peek(event EventType) bool {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()
	_, ok := b.events[event]
	return ok
}

// WaitFor blocks the execution until the event is received
func (b *EventBox) WaitFor(event EventType) {
	looping := true
	for looping {
		b.Wait(func(events *Events) {
			for evt := range *events {
				if evt == event {
					looping = false
					return
				}
			}
		})
	}
}
