// Package form holds the page-level form state that sits above formsets and
// confirm buttons: the current values keyed by dotted paths, change
// tracking against the initial snapshot, submit-time user errors, and the
// collection multiselect helper used by product and collection pages.
// Submit drives an attached confirm.Button through loading and then
// success or error.
package form
