package dashboard

import (
	"context"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

// Fields describes the scalar product inputs in display order. Stock
// inputs are listed only for products without variants. Attributes and
// collections are edited through Attributes and ToggleCollection.
func (p *ProductUpdatePage) Fields() []widgets.Field {
	fields := []widgets.Field{
		{Name: FieldName, Label: "Name", Kind: widgets.KindText},
		{Name: FieldDescription, Label: "Description", Kind: widgets.KindRichText},
		{Name: FieldBasePrice, Label: "Price", Kind: widgets.KindNumber},
		{Name: FieldCategory, Label: "Category", Kind: widgets.KindText, Help: "category id"},
		{Name: FieldChargeTaxes, Label: "Charge taxes", Kind: widgets.KindBool},
		{Name: FieldIsPublished, Label: "Published", Kind: widgets.KindBool},
		{Name: FieldPublicationDate, Label: "Publication date", Kind: widgets.KindText, Help: "YYYY-MM-DD"},
		{Name: FieldSeoTitle, Label: "SEO title", Kind: widgets.KindText},
		{
			Name:  FieldSeoDescription,
			Label: "SEO description",
			Kind:  widgets.KindText,
			Help:  p.SeoDescriptionPlaceholder(),
		},
	}
	if product := p.Product(); product != nil && !product.ProductType.HasVariants {
		fields = append(fields,
			widgets.Field{Name: FieldSKU, Label: "SKU", Kind: widgets.KindText},
			widgets.Field{Name: FieldStockQuantity, Label: "Stock quantity", Kind: widgets.KindNumber},
		)
	}
	return fields
}

// Fields describes the collection inputs in display order.
func (p *CollectionUpdatePage) Fields() []widgets.Field {
	return []widgets.Field{
		{Name: FieldName, Label: "Name", Kind: widgets.KindText},
		{Name: FieldIsPublished, Label: "Published", Kind: widgets.KindBool},
		{Name: FieldBackgroundImageURL, Label: "Background image", Kind: widgets.KindText},
		{Name: FieldSeoTitle, Label: "SEO title", Kind: widgets.KindText},
		{Name: FieldSeoDescription, Label: "SEO description", Kind: widgets.KindText},
	}
}

// CollectionField searches the first size collections and describes a
// multi-select over them.
func (p *ProductUpdatePage) CollectionField(ctx context.Context, size int) (widgets.Field, error) {
	result, err := p.SearchCollections(ctx, "", catalog.PageRequest{First: size})
	if err != nil {
		return widgets.Field{}, err
	}
	choices := make([]model.Choice, len(result.Items))
	for i, c := range result.Items {
		choices[i] = model.Choice{Label: c.Name, Value: c.ID}
	}
	return widgets.Field{
		Name:      FieldCollections,
		Label:     "Collections",
		Kind:      widgets.KindList,
		InputType: model.InputTypeMultiselect,
		Choices:   choices,
	}, nil
}

// SetCollections toggles collections until the selection holds exactly
// ids. Previously selected ids keep their order.
func (p *ProductUpdatePage) SetCollections(ids []string) error {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for _, id := range p.collections.IDs() {
		if _, ok := want[id]; ok {
			delete(want, id)
			continue
		}
		if err := p.ToggleCollection(id); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if _, ok := want[id]; !ok {
			continue
		}
		delete(want, id)
		if err := p.ToggleCollection(id); err != nil {
			return err
		}
	}
	return nil
}
