package call

import "sync"

// Emitter is an in-process EventSource. Listeners run on the emitting
// goroutine in subscription order.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventName][]subscription
	stops     int
}

type subscription struct {
	id       int
	listener Listener
}

func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[EventName][]subscription)}
}

func (e *Emitter) Subscribe(name EventName, listener Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[name] = append(e.listeners[name], subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(name, id) })
	}
}

func (e *Emitter) remove(name EventName, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.listeners[name]
	for i, sub := range subs {
		if sub.id == id {
			e.listeners[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.listeners[name]) == 0 {
		delete(e.listeners, name)
	}
}

// Emit delivers an event to a snapshot of the current listeners
func (e *Emitter) Emit(event Event) {
	e.mu.Lock()
	subs := append([]subscription(nil), e.listeners[event.Name]...)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.listener(event)
	}
}

// ListenerCount returns the number of listeners for name, or for every event
// when name is empty.
func (e *Emitter) ListenerCount(name EventName) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name != "" {
		return len(e.listeners[name])
	}
	total := 0
	for _, subs := range e.listeners {
		total += len(subs)
	}
	return total
}

// Stop records the request. Emitter has no remote side to notify.
func (e *Emitter) Stop() error {
	e.mu.Lock()
	e.stops++
	e.mu.Unlock()
	return nil
}

func (e *Emitter) StopCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}
