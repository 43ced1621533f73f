// Package model defines the small set of value types shared by the form-state
// packages: the `{target: {name, value}}` change event emitted by inputs, the
// user errors returned by mutations, and select choices. Attribute input
// types (dropdown, multiselect, text) decide which widget edits a formset
// entry.
package model
