package confirm

// DefaultLabel is used when the host supplies no label.
const DefaultLabel = "Confirm"

// ErrorLabel replaces the label while the error decoration is shown.
const ErrorLabel = "Error"

// Snapshot is the observable state of a Button.
type Snapshot struct {
	State State `json:"state"`
	// DisplayCompleted mirrors displayCompletedActionState: true from
	// entering loading until the reset delay after success/error elapses.
	DisplayCompleted bool `json:"displayCompletedActionState"`
}

// View is what a host needs to render the button on a given pass.
type View struct {
	Snapshot
	Disabled     bool   `json:"disabled"`
	ShowProgress bool   `json:"showProgress"`
	ShowSuccess  bool   `json:"showSuccess"`
	ShowError    bool   `json:"showError"`
	HideLabel    bool   `json:"hideLabel"`
	Label        string `json:"label"`
}

// Disabled reports whether the control is disabled given the host's own
// disabled flag. Loading always disables it.
func (s Snapshot) Disabled(external bool) bool {
	return (!s.DisplayCompleted && external) || s.State == StateLoading
}

// View derives the render contract for the snapshot.
func (s Snapshot) View(external bool, label string) View {
	v := View{
		Snapshot:     s,
		Disabled:     s.Disabled(external),
		ShowProgress: s.State == StateLoading,
		ShowSuccess:  s.State == StateSuccess && s.DisplayCompleted,
		ShowError:    s.State == StateError && s.DisplayCompleted,
		HideLabel:    (s.State == StateLoading || s.State == StateSuccess) && s.DisplayCompleted,
		Label:        label,
	}
	switch {
	case v.ShowError:
		v.Label = ErrorLabel
	case v.Label == "":
		v.Label = DefaultLabel
	}
	return v
}
