package model

// InputType enumerates how an attribute value is edited.
type InputType string

const (
	InputTypeDropdown    InputType = "dropdown"
	InputTypeMultiselect InputType = "multiselect"
	InputTypeText        InputType = "text"
)

// Target carries the field name and new value of a change event.
type Target struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ChangeEvent is the `{target: {name, value}}` shaped event every form
// input emits. Scalar fields and formset entries both accept it.
type ChangeEvent struct {
	Target Target `json:"target"`
}

// Change builds a ChangeEvent for name/value.
func Change(name string, value any) ChangeEvent {
	return ChangeEvent{Target: Target{Name: name, Value: value}}
}

// UserError is a business-rule violation returned by a mutation. Field is a
// dotted or JSON-pointer path; an empty Field applies to the whole form.
type UserError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Choice is a label/value pair offered by select-style inputs.
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InputMeta describes how a formset entry is edited. It is attached to
// entries as Data.
type InputMeta struct {
	InputType InputType `json:"inputType"`
	Values    []Choice  `json:"values"`
}
