// Package confirm implements the state machine behind a submit/confirm
// button that mirrors an asynchronous operation's lifecycle.
//
// The host drives the button through SetState with one of default, loading,
// success or error; the button never decides outcomes itself. Entering
// loading shows the in-progress decoration immediately. Entering success or
// error keeps the completed decoration visible for the reset delay (2s by
// default) and then falls back to neutral, even when the host has not moved
// the state back to default yet. A single timer is pending at most, and
// Close cancels it.
package confirm
