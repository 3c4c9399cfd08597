package armature

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/pool"
)

// Event types dispatched by an armature's EventDispatcher.
const (
	EventStart           = "start"
	EventLoopComplete    = "loopComplete"
	EventComplete        = "complete"
	EventFadeIn          = "fadeIn"
	EventFadeInComplete  = "fadeInComplete"
	EventFadeOut         = "fadeOut"
	EventFadeOutComplete = "fadeOutComplete"
	EventFrame           = "frameEvent"
	EventSound           = "soundEvent"
)

// StateInfo identifies the animation instance that produced an event.
type StateInfo interface {
	// Name returns the clip name of the instance.
	Name() string

	// Layer returns the blend layer of the instance.
	Layer() int

	// Group returns the group tag of the instance.
	Group() string
}

// EventObject is a pooled event record. Records are returned to the pool right after dispatch,
// so listeners must copy anything they want to keep.
type EventObject struct {
	Type     string
	Name     string
	Armature Armature
	State    StateInfo
	Bone     Bone
	Slot     Slot
	Data     any
}

var eventPool = pool.NewPool(
	func() *EventObject { return &EventObject{} },
	pool.WithReset(func(e *EventObject) { *e = EventObject{} }),
)

// BorrowEvent returns a cleared event record of the given type.
//
// Parameters:
//   - eventType: one of the Event* constants
//
// Returns:
//   - *EventObject: the record
func BorrowEvent(eventType string) *EventObject {
	e := eventPool.Borrow()
	e.Type = eventType
	return e
}

// ReturnEvent hands an event record back to the pool.
//
// Parameters:
//   - e: the record
func ReturnEvent(e *EventObject) {
	eventPool.Return(e)
}

// Listener receives dispatched events.
type Listener func(e *EventObject)

// eventDispatcher implements the EventDispatcher interface.
type eventDispatcher struct {
	mu        *sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    ListenerID
}

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// ListenerID identifies one registration made with AddEventListener. Zero is never issued.
type ListenerID uint64

// EventDispatcher delivers armature events to registered listeners.
// The core only asks whether anyone listens before it allocates a record.
type EventDispatcher interface {
	// HasEvent reports whether at least one listener is registered for eventType.
	//
	// Parameters:
	//   - eventType: the event type
	//
	// Returns:
	//   - bool: true if a listener is registered
	HasEvent(eventType string) bool

	// DispatchEvent calls every listener registered for the record's type, in registration order.
	//
	// Parameters:
	//   - e: the record
	DispatchEvent(e *EventObject)

	// AddEventListener registers a listener for eventType.
	//
	// Parameters:
	//   - eventType: the event type
	//   - l: the listener
	//
	// Returns:
	//   - ListenerID: the registration handle, or 0 when l is nil
	AddEventListener(eventType string, l Listener) ListenerID

	// RemoveEventListener removes one registration. Unknown ids are ignored.
	//
	// Parameters:
	//   - eventType: the event type the listener was registered for
	//   - id: the handle returned by AddEventListener
	RemoveEventListener(eventType string, id ListenerID)

	// RemoveEventListeners removes every listener registered for eventType.
	//
	// Parameters:
	//   - eventType: the event type
	RemoveEventListeners(eventType string)
}

var _ EventDispatcher = &eventDispatcher{}

// NewEventDispatcher creates an EventDispatcher with no listeners.
//
// Returns:
//   - EventDispatcher: the newly created dispatcher
func NewEventDispatcher() EventDispatcher {
	return &eventDispatcher{
		mu:        &sync.RWMutex{},
		listeners: make(map[string][]listenerEntry),
	}
}

func (d *eventDispatcher) HasEvent(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventType]) > 0
}

func (d *eventDispatcher) DispatchEvent(e *EventObject) {
	d.mu.RLock()
	ls := d.listeners[e.Type]
	d.mu.RUnlock()
	for _, l := range ls {
		l.fn(e)
	}
}

func (d *eventDispatcher) AddEventListener(eventType string, l Listener) ListenerID {
	if l == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	// copy on write so DispatchEvent can iterate without holding the lock
	ls := make([]listenerEntry, 0, len(d.listeners[eventType])+1)
	ls = append(ls, d.listeners[eventType]...)
	d.listeners[eventType] = append(ls, listenerEntry{id: d.nextID, fn: l})
	return d.nextID
}

func (d *eventDispatcher) RemoveEventListener(eventType string, id ListenerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	current := d.listeners[eventType]
	ls := make([]listenerEntry, 0, len(current))
	for _, l := range current {
		if l.id != id {
			ls = append(ls, l)
		}
	}
	if len(ls) == 0 {
		delete(d.listeners, eventType)
		return
	}
	d.listeners[eventType] = ls
}

func (d *eventDispatcher) RemoveEventListeners(eventType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, eventType)
}
