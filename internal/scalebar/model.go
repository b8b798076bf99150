package scalebar

import (
	"sync"

	"scalebar-service/internal/units"
)

// Model keeps the inputs of a scalebar and notifies subscribers whenever the computed
// result changes. Subscribers receive an immutable Result and are invoked outside the
// model's lock, in registration order.
type Model struct {
	mu     sync.Mutex
	engine Engine
	input  Input
	result Result
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(Result)
}

// NewModel returns a model computed once from in.
func NewModel(engine Engine, in Input) *Model {
	return &Model{
		engine: engine,
		input:  in,
		result: engine.Compute(in),
	}
}

// Result returns the last computed result.
func (m *Model) Result() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Input returns the current inputs.
func (m *Model) Input() Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// Subscribe registers fn and returns a function removing it again.
func (m *Model) Subscribe(fn func(Result)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// SetWidth updates the available pixel width, e.g. after a resize.
func (m *Model) SetWidth(width float64) {
	m.Update(func(in *Input) { in.AvailableWidth = width })
}

// SetResolution updates the ground distance per pixel, e.g. after a scale change.
func (m *Model) SetResolution(perPixel float64, base units.LinearUnit) {
	m.Update(func(in *Input) {
		in.GroundDistancePerPixel = perPixel
		in.BaseUnit = base
	})
}

// SetSystem switches the unit system.
func (m *Model) SetSystem(sys units.System) {
	m.Update(func(in *Input) { in.System = sys })
}

// Update applies edit to the inputs, recomputes and notifies subscribers when the
// result differs from the previous one.
func (m *Model) Update(edit func(*Input)) {
	m.mu.Lock()
	edit(&m.input)
	next := m.engine.Compute(m.input)
	if next == m.result {
		m.mu.Unlock()
		return
	}
	m.result = next
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}
