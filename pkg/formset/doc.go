// Package formset manages an ordered collection of keyed field entries that
// are edited together, such as the per-attribute values of a product form.
//
// A Formset is seeded once per form mount (possibly with an empty list until
// upstream data resolves) and mutated through Change, which updates an
// existing entry in place or appends a new one when the id is not tracked
// yet. Entry order is insertion order and survives edits. Every mutation
// bumps Version and hands listeners a fresh snapshot slice, so reactive
// callers can detect changes by identity.
package formset
