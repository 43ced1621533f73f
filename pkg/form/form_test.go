package form_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/clock"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
)

func initialData() map[string]any {
	return map[string]any{
		"name":        "Shirt",
		"basePrice":   12.5,
		"collections": []string{"col-1"},
		"seo": map[string]any{
			"title":       "",
			"description": "",
		},
	}
}

func TestChange_DottedPaths(t *testing.T) {
	f := form.New(initialData())

	if err := f.Change(model.Change("seo.title", "Best shirt")); err != nil {
		t.Fatalf("change seo.title: %v", err)
	}
	if err := f.Change(model.Change("attributes.0", nil)); err != nil {
		t.Fatalf("change attributes.0: %v", err)
	}
	if err := f.Change(model.Change("attributes.1.slug", "size")); err != nil {
		t.Fatalf("change attributes.1.slug: %v", err)
	}

	want := initialData()
	want["seo"].(map[string]any)["title"] = "Best shirt"
	want["attributes"] = []any{nil, map[string]any{"slug": "size"}}
	if diff := cmp.Diff(want, f.Data()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	if v, ok := f.Value("seo.title"); !ok || v != "Best shirt" {
		t.Fatalf("Value(seo.title) = %v, %v", v, ok)
	}
}

func TestChange_InvalidPaths(t *testing.T) {
	f := form.New(initialData())
	for _, name := range []string{"", "seo..title", "name.first", "x.2000000000", "attributes.1", "attributes.-1"} {
		if err := f.Change(model.Change(name, "x")); !errors.Is(err, form.ErrInvalidPath) {
			t.Fatalf("Change(%q) error = %v, want ErrInvalidPath", name, err)
		}
	}
}

func TestChange_IndexBeyondEndLeavesValuesUntouched(t *testing.T) {
	f := form.New(initialData())
	if err := f.Change(model.Change("tags.0", "a")); err != nil {
		t.Fatalf("change tags.0: %v", err)
	}
	if err := f.Change(model.Change("tags.20000000", "b")); !errors.Is(err, form.ErrInvalidPath) {
		t.Fatalf("error = %v, want ErrInvalidPath", err)
	}
	if v, _ := f.Value("tags"); len(v.([]any)) != 1 {
		t.Fatalf("tags = %v, want one element", v)
	}
}

func TestHasChanged(t *testing.T) {
	f := form.New(initialData(), form.WithConfirmLeave(true))
	if f.HasChanged() || f.ConfirmLeave() {
		t.Fatalf("fresh form should be unchanged")
	}

	_ = f.Change(model.Change("name", "Hoodie"))
	if !f.HasChanged() || !f.ConfirmLeave() {
		t.Fatalf("expected change to be tracked")
	}

	_ = f.Change(model.Change("name", "Shirt"))
	if f.HasChanged() {
		t.Fatalf("reverting the value should clear hasChanged")
	}

	_ = f.Change(model.Change("collections", []string{}))
	_ = f.Change(model.Change("collections", []string{"col-1"}))
	if f.HasChanged() {
		t.Fatalf("collections round trip should be unchanged")
	}
}

func TestData_IsDeepCopy(t *testing.T) {
	f := form.New(initialData())
	data := f.Data()
	data["seo"].(map[string]any)["title"] = "leak"
	data["collections"].([]string)[0] = "leak"

	if f.HasChanged() {
		t.Fatalf("mutating Data() leaked into the form")
	}
}

func newButton(t *testing.T) (*confirm.Button, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := confirm.New(confirm.WithClock(fake))
	t.Cleanup(b.Close)
	return b, fake
}

func TestSubmit_SuccessDrivesButtonAndRebases(t *testing.T) {
	button, fake := newButton(t)
	var seen []confirm.State
	var submitted map[string]any

	var f *form.Form
	f = form.New(initialData(),
		form.WithButton(button),
		form.WithSubmit(func(_ context.Context, data map[string]any) ([]model.UserError, error) {
			seen = append(seen, button.State())
			if !f.Submitting() {
				t.Errorf("Submitting() should be true inside the submit func")
			}
			submitted = data
			return nil, nil
		}),
	)
	_ = f.Change(model.Change("name", "Hoodie"))

	res, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected user errors: %+v", res.Errors)
	}
	if len(seen) != 1 || seen[0] != confirm.StateLoading {
		t.Fatalf("button should be loading during submit, saw %v", seen)
	}
	if submitted["name"] != "Hoodie" {
		t.Fatalf("submitted name = %v", submitted["name"])
	}
	if button.State() != confirm.StateSuccess || !button.DisplayCompletedActionState() {
		t.Fatalf("button should show success, got %+v", button.Snapshot())
	}
	if f.HasChanged() {
		t.Fatalf("successful submit should rebase the initial snapshot")
	}

	fake.Advance(confirm.DefaultResetDelay)
	if button.DisplayCompletedActionState() {
		t.Fatalf("success decoration should reset")
	}
}

func TestSubmit_UserErrors(t *testing.T) {
	button, _ := newButton(t)
	f := form.New(initialData(),
		form.WithButton(button),
		form.WithSubmit(func(context.Context, map[string]any) ([]model.UserError, error) {
			return []model.UserError{
				{Field: "name", Message: "This field is required."},
				{Field: "/input/seo/title", Message: " Too long "},
				{Field: "unknownField", Message: "Something broke"},
				{Message: "Something broke"},
			}, nil
		}),
	)
	_ = f.Change(model.Change("name", ""))

	res, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	wantFields := map[string][]string{
		"name":      {"This field is required."},
		"seo.title": {"Too long"},
	}
	if diff := cmp.Diff(wantFields, res.Errors.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantFields, f.Errors()); diff != "" {
		t.Fatalf("stored errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Something broke"}, f.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if button.State() != confirm.StateError {
		t.Fatalf("button state = %s, want error", button.State())
	}
	if !f.HasChanged() {
		t.Fatalf("rejected submit must keep unsaved changes")
	}
}

func TestSubmit_TransportError(t *testing.T) {
	button, _ := newButton(t)
	boom := errors.New("connection reset")
	calls := 0
	f := form.New(initialData(),
		form.WithButton(button),
		form.WithSubmit(func(context.Context, map[string]any) ([]model.UserError, error) {
			calls++
			if calls == 1 {
				return []model.UserError{{Field: "name", Message: "required"}}, nil
			}
			return nil, boom
		}),
	)

	if res, err := f.Submit(context.Background()); err != nil || res.OK() {
		t.Fatalf("first submit = %+v, %v, want user errors", res, err)
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
	if button.State() != confirm.StateError {
		t.Fatalf("button state = %s, want error", button.State())
	}
	if f.Submitting() {
		t.Fatalf("submitting flag should be cleared")
	}
	if len(f.Errors()) != 0 || len(f.FormErrors()) != 0 {
		t.Fatalf("stale errors kept after transport failure: %v %v", f.Errors(), f.FormErrors())
	}
}

func TestSubmit_Guards(t *testing.T) {
	if _, err := form.New(nil).Submit(context.Background()); !errors.Is(err, form.ErrNoSubmit) {
		t.Fatalf("error = %v, want ErrNoSubmit", err)
	}

	release := make(chan struct{})
	entered := make(chan struct{})
	f := form.New(nil, form.WithSubmit(func(context.Context, map[string]any) ([]model.UserError, error) {
		close(entered)
		<-release
		return nil, nil
	}))
	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-entered
	if _, err := f.Submit(context.Background()); !errors.Is(err, form.ErrSubmitInFlight) {
		t.Fatalf("error = %v, want ErrSubmitInFlight", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestReset_ClearsErrorsAndValues(t *testing.T) {
	calls := 0
	f := form.New(initialData(),
		form.WithOnChange(func() { calls++ }),
		form.WithSubmit(func(context.Context, map[string]any) ([]model.UserError, error) {
			return []model.UserError{{Field: "name", Message: "bad"}}, nil
		}),
	)
	_, _ = f.Submit(context.Background())
	f.Reset(map[string]any{"name": "Other"})

	if f.Errors() != nil || len(f.FormErrors()) != 0 {
		t.Fatalf("reset should clear errors")
	}
	if diff := cmp.Diff(map[string]any{"name": "Other"}, f.Data()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Fatalf("onChange calls = %d, want 2", calls)
	}
}
