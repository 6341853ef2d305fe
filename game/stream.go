package game

import "sync"

// Subject holds a current value and pushes every new value to its listeners,
// synchronously and in subscription order.
type Subject[T any] struct {
	// deliver orders initial deliveries against publishes; listeners must not publish to the same Subject.
	deliver   sync.Mutex
	mu        sync.Mutex
	value     T
	listeners []listener[T]
	nextID    int
	closed    bool
}

type listener[T any] struct {
	id int
	fn func(T)
}

// NewSubject returns a Subject whose current value is initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe calls fn with the current value, then with every later value until
// the returned function is called or the Subject is closed. Subscribing to a closed
// Subject does nothing.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	current := s.value
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Publish stores v and delivers it to every listener before returning.
// Publishing on a closed Subject is ignored.
func (s *Subject[T]) Publish(v T) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.value = v
	listeners := append([]listener[T](nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(v)
	}
}

// Close drops all listeners; the last value stays readable through Value.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = nil
}

// Closed reports whether Close has been called.
func (s *Subject[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
