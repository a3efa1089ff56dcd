package player

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tubecli/tube/log"
)

// property is the single subscription shared by every handle observing one name.
type property struct {
	id   int64
	name string
	kind ValueKind

	// ready is closed once the observe command has been answered; err holds its outcome.
	ready chan struct{}
	err   error

	mu      sync.RWMutex
	value   any
	valid   bool
	version uint64
}

func (p *property) update(ev *Event) {
	v, ok := coerce(ev.Data, p.kind)

	p.mu.Lock()
	p.value, p.valid = v, ok
	p.version++
	p.mu.Unlock()
}

func (p *property) snapshot() (any, bool, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, p.valid, p.version
}

// observers maps observer ids and property names to their subscriptions.
type observers struct {
	mu     sync.Mutex
	byName map[string]*property
	byID   map[int64]*property
	nextID int64
	err    error
}

func newObservers() *observers {
	return &observers{
		byName: make(map[string]*property),
		byID:   make(map[int64]*property),
	}
}

// acquire returns the subscription for name, creating it when absent.
// created is true for the caller responsible for issuing the observe command.
func (o *observers) acquire(name string, kind ValueKind) (p *property, created bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.err != nil {
		return nil, false, o.err
	}

	if p, ok := o.byName[name]; ok {
		if p.kind != kind {
			return nil, false, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, name, p.kind, kind)
		}
		return p, false, nil
	}

	o.nextID++
	p = &property{
		id:    o.nextID,
		name:  name,
		kind:  kind,
		ready: make(chan struct{}),
	}
	o.byName[name] = p
	o.byID[p.id] = p
	return p, true, nil
}

// settle records the outcome of the observe command. A failed registration is
// forgotten so a later caller can try again.
func (o *observers) settle(p *property, err error) {
	if err != nil {
		o.mu.Lock()
		if o.byName[p.name] == p {
			delete(o.byName, p.name)
		}
		delete(o.byID, p.id)
		o.mu.Unlock()
	}

	p.err = err
	close(p.ready)
}

// route applies a property-change event. It reports false when no subscription matches.
func (o *observers) route(ev *Event) bool {
	o.mu.Lock()
	var p *property
	if ev.HasObserver {
		p = o.byID[ev.ObserverID]
	} else if ev.Property != "" {
		p = o.byName[ev.Property]
	}
	o.mu.Unlock()

	if p == nil {
		log.With(log.Fields{"id": ev.ObserverID, "name": ev.Property}).Debugf("event for unknown observer dropped")
		return false
	}

	p.update(ev)
	return true
}

// fail refuses every future subscription.
func (o *observers) fail(err error) {
	o.mu.Lock()
	if o.err == nil {
		o.err = err
	}
	o.mu.Unlock()
}

// ObservedValue is one caller's view of an observed property. Reads never block.
type ObservedValue struct {
	prop *property
	def  any
	seen atomic.Uint64
}

// Name returns the observed property name.
func (v *ObservedValue) Name() string {
	return v.prop.name
}

// Kind returns the kind values are decoded as.
func (v *ObservedValue) Kind() ValueKind {
	return v.prop.kind
}

// HasChanged reports whether at least one event arrived since this handle
// last checked. The first check counts every event since the subscription
// was registered.
func (v *ObservedValue) HasChanged() bool {
	_, _, version := v.prop.snapshot()
	return v.seen.Swap(version) != version
}

// Version returns the number of events applied to the property.
func (v *ObservedValue) Version() uint64 {
	_, _, version := v.prop.snapshot()
	return version
}

// Current returns the latest decoded value, or the handle's default when no
// event has arrived yet or the last payload could not be decoded.
func (v *ObservedValue) Current() any {
	value, valid, _ := v.prop.snapshot()
	if !valid {
		return v.def
	}
	return value
}

// Float returns Current for a KindNumber property.
func (v *ObservedValue) Float() float64 {
	f, _ := v.Current().(float64)
	return f
}

// Bool returns Current for a KindBool property.
func (v *ObservedValue) Bool() bool {
	b, _ := v.Current().(bool)
	return b
}

// String returns Current for a KindString property.
func (v *ObservedValue) String() string {
	s, _ := v.Current().(string)
	return s
}
