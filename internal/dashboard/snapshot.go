package dashboard

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formset"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Page kinds.
const (
	KindProduct    = "product"
	KindCollection = "collection"
)

// Snapshot is the render state of a page.
type Snapshot struct {
	Kind               string                    `json:"kind"`
	ID                 string                    `json:"id"`
	Data               map[string]any            `json:"data"`
	Attributes         []formset.Entry[[]string] `json:"attributes,omitempty"`
	Collections        []form.SelectionItem      `json:"collections,omitempty"`
	CollectionsDisplay string                    `json:"collectionsDisplay,omitempty"`
	HasVariants        bool                      `json:"hasVariants"`
	Errors             map[string][]string       `json:"errors,omitempty"`
	FormErrors         []string                  `json:"formErrors,omitempty"`
	HasChanged         bool                      `json:"hasChanged"`
	ConfirmLeave       bool                      `json:"confirmLeave"`
	SeoPlaceholder     string                    `json:"seoPlaceholder,omitempty"`
	Button             confirm.View              `json:"button"`
}

// Page is the surface shared by the product and collection pages.
type Page interface {
	Change(event model.ChangeEvent) error
	Submit(ctx context.Context) (form.Result, error)
	Snapshot() Snapshot
	SaveBar(disabled bool) confirm.View
	Button() *confirm.Button
	Close()
}

// AttributeEditor is implemented by pages with an attribute formset.
type AttributeEditor interface {
	ChangeAttribute(id string, value any) error
}

// CollectionPicker is implemented by pages with a collection selection.
type CollectionPicker interface {
	ToggleCollection(id string) error
}

var (
	_ Page             = (*ProductUpdatePage)(nil)
	_ Page             = (*CollectionUpdatePage)(nil)
	_ AttributeEditor  = (*ProductUpdatePage)(nil)
	_ CollectionPicker = (*ProductUpdatePage)(nil)
)
