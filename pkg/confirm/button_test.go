package confirm_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/clock"
	"github.com/goliatone/go-formstate/pkg/confirm"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newButton(t *testing.T, opts ...confirm.Option) (*confirm.Button, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(epoch)
	b := confirm.New(append([]confirm.Option{confirm.WithClock(fake)}, opts...)...)
	t.Cleanup(b.Close)
	return b, fake
}

func TestLoading_SetsFlagSynchronously(t *testing.T) {
	b, _ := newButton(t)
	if b.DisplayCompletedActionState() {
		t.Fatalf("flag should start false")
	}

	b.SetState(confirm.StateLoading)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("flag should be true right after entering loading")
	}
}

func TestSuccess_ClearsFlagAfterDelay(t *testing.T) {
	b, fake := newButton(t)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)

	fake.Advance(1999 * time.Millisecond)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("flag cleared before the reset delay")
	}
	if !b.View(false, "Save").ShowSuccess {
		t.Fatalf("success decoration should be visible")
	}

	fake.Advance(time.Millisecond)
	if b.DisplayCompletedActionState() {
		t.Fatalf("flag should be cleared at 2000ms")
	}
	view := b.View(false, "Save")
	if view.ShowSuccess || view.HideLabel {
		t.Fatalf("decoration should revert to neutral: %+v", view)
	}
	if b.State() != confirm.StateSuccess {
		t.Fatalf("logical state should remain success, got %s", b.State())
	}
}

func TestLoadingBeforeExpiry_CancelsReset(t *testing.T) {
	b, fake := newButton(t)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)

	fake.Advance(1000 * time.Millisecond)
	b.SetState(confirm.StateLoading)
	if fake.PendingCount() != 0 {
		t.Fatalf("pending timers = %d, want 0", fake.PendingCount())
	}

	fake.Advance(1000 * time.Millisecond)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("flag must still be true at the original 2000ms mark")
	}
	fake.Advance(time.Hour)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("loading never clears the flag on its own")
	}
}

func TestCompletedRearm_KeepsSingleTimer(t *testing.T) {
	b, fake := newButton(t)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateError)
	fake.Advance(1500 * time.Millisecond)
	b.SetState(confirm.StateSuccess)

	if fake.PendingCount() != 1 {
		t.Fatalf("pending timers = %d, want 1", fake.PendingCount())
	}

	fake.Advance(500 * time.Millisecond)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("re-armed timer should restart the delay")
	}
	fake.Advance(1500 * time.Millisecond)
	if b.DisplayCompletedActionState() {
		t.Fatalf("flag should clear 2000ms after the last completed state")
	}
}

func TestDefault_LeavesFlagAndTimer(t *testing.T) {
	b, fake := newButton(t)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)
	b.SetState(confirm.StateDefault)

	if !b.DisplayCompletedActionState() {
		t.Fatalf("default must not touch the flag")
	}
	if fake.PendingCount() != 1 {
		t.Fatalf("default must not cancel the pending reset")
	}
	fake.Advance(2 * time.Second)
	if b.DisplayCompletedActionState() {
		t.Fatalf("pending reset should still fire after default")
	}
}

func TestSameState_IsNoop(t *testing.T) {
	b, fake := newButton(t)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)
	fake.Advance(1500 * time.Millisecond)
	b.SetState(confirm.StateSuccess)

	fake.Advance(500 * time.Millisecond)
	if b.DisplayCompletedActionState() {
		t.Fatalf("repeating success must not re-arm the timer")
	}
}

func TestClick_SuppressedWhileLoading(t *testing.T) {
	b, _ := newButton(t)
	calls := 0
	onClick := func() { calls++ }

	b.SetState(confirm.StateLoading)
	if b.Click(onClick) {
		t.Fatalf("click reported as handled while loading")
	}
	if calls != 0 {
		t.Fatalf("onClick called %d times while loading", calls)
	}
	if !b.Disabled(false) {
		t.Fatalf("loading must disable the control regardless of the host flag")
	}

	b.SetState(confirm.StateError)
	if !b.Click(onClick) || calls != 1 {
		t.Fatalf("onClick should run once out of loading, calls = %d", calls)
	}
}

func TestDisabled_RespectsCompletedFlag(t *testing.T) {
	b, fake := newButton(t)
	if !b.Disabled(true) {
		t.Fatalf("host-disabled idle button should be disabled")
	}
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)
	if b.Disabled(true) {
		t.Fatalf("completed decoration keeps the button enabled")
	}
	fake.Advance(2 * time.Second)
	if !b.Disabled(true) {
		t.Fatalf("host flag applies again after the reset")
	}
}

func TestClose_CancelsPendingReset(t *testing.T) {
	var mu sync.Mutex
	var calls []confirm.Snapshot
	spy := func(s confirm.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, s)
	}
	b, fake := newButton(t, confirm.WithNotify(spy))
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateSuccess)

	mu.Lock()
	before := len(calls)
	mu.Unlock()

	b.Close()
	b.Close()
	fake.Advance(5 * time.Second)
	b.SetState(confirm.StateLoading)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != before {
		t.Fatalf("notify called after Close: %v", calls[before:])
	}
	if fake.PendingCount() != 0 {
		t.Fatalf("timer left pending after Close")
	}
}

func TestClose_RealClockDoesNotLeak(t *testing.T) {
	cleared := make(chan struct{}, 1)
	b := confirm.New(
		confirm.WithResetDelay(20*time.Millisecond),
		confirm.WithNotify(func(s confirm.Snapshot) {
			if !s.DisplayCompleted {
				cleared <- struct{}{}
			}
		}),
	)
	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateError)
	b.Close()

	select {
	case <-cleared:
		t.Fatalf("reset fired after Close")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNotify_ReportsTransitionsAndReset(t *testing.T) {
	var got []confirm.Snapshot
	b, fake := newButton(t, confirm.WithNotify(func(s confirm.Snapshot) { got = append(got, s) }))

	b.SetState(confirm.StateLoading)
	b.SetState(confirm.StateError)
	fake.Advance(2 * time.Second)
	b.SetState(confirm.StateDefault)

	want := []confirm.Snapshot{
		{State: confirm.StateLoading, DisplayCompleted: true},
		{State: confirm.StateError, DisplayCompleted: true},
		{State: confirm.StateError, DisplayCompleted: false},
		{State: confirm.StateDefault, DisplayCompleted: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialState(t *testing.T) {
	loading, _ := newButton(t, confirm.WithInitialState(confirm.StateLoading))
	if !loading.DisplayCompletedActionState() {
		t.Fatalf("button mounted while loading should show progress")
	}

	success, fake := newButton(t, confirm.WithInitialState(confirm.StateSuccess))
	if success.DisplayCompletedActionState() || fake.PendingCount() != 0 {
		t.Fatalf("button mounted in success should be neutral without a timer")
	}
}

func TestView_Labels(t *testing.T) {
	cases := []struct {
		name string
		snap confirm.Snapshot
		in   string
		want confirm.View
	}{
		{
			name: "default falls back to Confirm",
			snap: confirm.Snapshot{State: confirm.StateDefault},
			want: confirm.View{Snapshot: confirm.Snapshot{State: confirm.StateDefault}, Label: "Confirm"},
		},
		{
			name: "loading hides label and shows progress",
			snap: confirm.Snapshot{State: confirm.StateLoading, DisplayCompleted: true},
			in:   "Save",
			want: confirm.View{
				Snapshot:     confirm.Snapshot{State: confirm.StateLoading, DisplayCompleted: true},
				Disabled:     true,
				ShowProgress: true,
				HideLabel:    true,
				Label:        "Save",
			},
		},
		{
			name: "error swaps label",
			snap: confirm.Snapshot{State: confirm.StateError, DisplayCompleted: true},
			in:   "Save",
			want: confirm.View{
				Snapshot:  confirm.Snapshot{State: confirm.StateError, DisplayCompleted: true},
				ShowError: true,
				Label:     "Error",
			},
		},
		{
			name: "stale error is neutral",
			snap: confirm.Snapshot{State: confirm.StateError},
			in:   "Save",
			want: confirm.View{Snapshot: confirm.Snapshot{State: confirm.StateError}, Label: "Save"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.snap.View(false, tc.in)); diff != "" {
				t.Fatalf("view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseState(t *testing.T) {
	for raw, want := range map[string]confirm.State{
		"":         confirm.StateDefault,
		"Loading":  confirm.StateLoading,
		" success": confirm.StateSuccess,
		"error":    confirm.StateError,
	} {
		got, err := confirm.ParseState(raw)
		if err != nil || got != want {
			t.Fatalf("ParseState(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := confirm.ParseState("pending"); !errors.Is(err, confirm.ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestZeroValue_IsUsable(t *testing.T) {
	var b confirm.Button
	if got := b.State(); got != confirm.StateDefault {
		t.Fatalf("zero button state = %s, want default", got)
	}

	b.SetState(confirm.StateLoading)
	if !b.DisplayCompletedActionState() {
		t.Fatalf("flag should be set after loading")
	}
	b.SetState(confirm.StateSuccess)
	b.Close()
	if got := b.State(); got != confirm.StateSuccess {
		t.Fatalf("state = %s, want success", got)
	}
}
