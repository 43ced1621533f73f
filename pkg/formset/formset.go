package formset

import (
	"sync"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Entry is one keyed field inside a formset. Data is attached at creation
// and never changed by Change.
type Entry[V any] struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Value V      `json:"value"`
	Data  any    `json:"data,omitempty"`
}

// Listener receives the snapshot produced by a mutation.
type Listener[V any] func(entries []Entry[V])

// Converter coerces a change-event value into V.
type Converter[V any] func(value any) (V, bool)

// Option configures a Formset.
type Option[V any] func(*Formset[V])

// WithListener registers fn to run after every mutation. Listeners run
// outside the formset lock and may read the formset.
func WithListener[V any](fn Listener[V]) Option[V] {
	return func(f *Formset[V]) {
		if fn != nil {
			f.listeners = append(f.listeners, fn)
		}
	}
}

// WithConverter overrides how HandleChange turns an event value into V.
func WithConverter[V any](fn Converter[V]) Option[V] {
	return func(f *Formset[V]) {
		if fn != nil {
			f.convert = fn
		}
	}
}

// WithClone sets how values are copied in and out of the formset. Without
// it values are copied by assignment, so reference types such as slices
// share backing arrays with callers. CloneStrings serves []string.
func WithClone[V any](fn func(V) V) Option[V] {
	return func(f *Formset[V]) {
		if fn != nil {
			f.clone = fn
		}
	}
}

// Formset is an ordered id -> entry mapping with insert-or-update edits.
// It is safe for concurrent use. The zero value is an empty formset.
type Formset[V any] struct {
	mu        sync.RWMutex
	entries   []Entry[V]
	index     map[string]int
	version   uint64
	listeners []Listener[V]
	convert   Converter[V]
	clone     func(V) V
}

// New seeds a formset from entries. A nil or empty slice is valid; callers
// re-seed with Reset once remote data arrives.
func New[V any](entries []Entry[V], opts ...Option[V]) *Formset[V] {
	f := &Formset[V]{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.seed(entries)
	return f
}

// Change sets the value of id. A tracked id keeps its position, label and
// data; an unknown id is appended with an empty label and nil data.
func (f *Formset[V]) Change(id string, value V) {
	if f == nil {
		return
	}
	value = f.copyValue(value)
	f.mu.Lock()
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if pos, ok := f.index[id]; ok {
		f.entries[pos].Value = value
	} else {
		f.index[id] = len(f.entries)
		f.entries = append(f.entries, Entry[V]{ID: id, Value: value})
	}
	f.version++
	snapshot, listeners := f.snapshotLocked(), f.listeners
	f.mu.Unlock()

	notify(listeners, snapshot)
}

// HandleChange adapts a form change event: Target.Name is the entry id and
// Target.Value its new value. It reports false, leaving the formset
// untouched, when the value cannot be converted to V.
func (f *Formset[V]) HandleChange(event model.ChangeEvent) bool {
	if f == nil {
		return false
	}
	convert := f.convert
	if convert == nil {
		convert = assertValue[V]
	}
	value, ok := convert(event.Target.Value)
	if !ok {
		return false
	}
	f.Change(event.Target.Name, value)
	return true
}

// Reset replaces the whole sequence, discarding previous ids and order.
func (f *Formset[V]) Reset(entries []Entry[V]) {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.seed(entries)
	f.version++
	snapshot, listeners := f.snapshotLocked(), f.listeners
	f.mu.Unlock()

	notify(listeners, snapshot)
}

// All returns the entries in insertion order. The slice is a copy owned by
// the caller; values are copied with the WithClone function.
func (f *Formset[V]) All() []Entry[V] {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

// Get returns the entry for id.
func (f *Formset[V]) Get(id string) (Entry[V], bool) {
	if f == nil {
		return Entry[V]{}, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	pos, ok := f.index[id]
	if !ok {
		return Entry[V]{}, false
	}
	entry := f.entries[pos]
	entry.Value = f.copyValue(entry.Value)
	return entry, true
}

// Len reports the number of tracked entries.
func (f *Formset[V]) Len() int {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// Values returns an id -> value map of the current entries.
func (f *Formset[V]) Values() map[string]V {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]V, len(f.entries))
	for _, entry := range f.entries {
		out[entry.ID] = f.copyValue(entry.Value)
	}
	return out
}

// Version increases on every mutation.
func (f *Formset[V]) Version() uint64 {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}

// seed rebuilds entries and index. Repeated ids keep the position of their
// first occurrence and the value of their last. Callers hold f.mu or own f
// exclusively.
func (f *Formset[V]) seed(entries []Entry[V]) {
	f.entries = make([]Entry[V], 0, len(entries))
	f.index = make(map[string]int, len(entries))
	for _, entry := range entries {
		entry.Value = f.copyValue(entry.Value)
		if pos, ok := f.index[entry.ID]; ok {
			f.entries[pos].Value = entry.Value
			continue
		}
		f.index[entry.ID] = len(f.entries)
		f.entries = append(f.entries, entry)
	}
}

func (f *Formset[V]) snapshotLocked() []Entry[V] {
	out := make([]Entry[V], len(f.entries))
	copy(out, f.entries)
	for i := range out {
		out[i].Value = f.copyValue(out[i].Value)
	}
	return out
}

func (f *Formset[V]) copyValue(value V) V {
	if f.clone == nil {
		return value
	}
	return f.clone(value)
}

func notify[V any](listeners []Listener[V], snapshot []Entry[V]) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func assertValue[V any](value any) (V, bool) {
	if value == nil {
		var zero V
		return zero, true
	}
	typed, ok := value.(V)
	return typed, ok
}
