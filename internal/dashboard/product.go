package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formset"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Product form field names.
const (
	FieldName            = "name"
	FieldBasePrice       = "basePrice"
	FieldCategory        = "category"
	FieldChargeTaxes     = "chargeTaxes"
	FieldCollections     = "collections"
	FieldDescription     = "description"
	FieldIsPublished     = "isPublished"
	FieldPublicationDate = "publicationDate"
	FieldSeoTitle        = "seoTitle"
	FieldSeoDescription  = "seoDescription"
	FieldSKU             = "sku"
	FieldStockQuantity   = "stockQuantity"
	FieldAttributes      = "attributes"
)

var productFields = map[string]coercer{
	FieldName:            stringField,
	FieldBasePrice:       floatField,
	FieldCategory:        stringField,
	FieldChargeTaxes:     boolField,
	FieldCollections:     stringsField,
	FieldDescription:     stringField,
	FieldIsPublished:     boolField,
	FieldPublicationDate: stringField,
	FieldSeoTitle:        stringField,
	FieldSeoDescription:  stringField,
	FieldSKU:             stringField,
	FieldStockQuantity:   intField,
}

// AttributeData is attached to every attribute formset entry.
type AttributeData = model.InputMeta

// ProductUpdatePage is the product edit screen.
type ProductUpdatePage struct {
	cfg         config
	store       catalog.Store
	attributes  *formset.Formset[[]string]
	collections *form.Selection
	form        *form.Form
	button      *confirm.Button

	mu      sync.RWMutex
	product *catalog.Product
}

// OpenProductPage loads product id from store and builds its page.
func OpenProductPage(ctx context.Context, store catalog.Store, id string, opts ...Option) (*ProductUpdatePage, error) {
	product, err := store.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	page := NewProductUpdatePage(store, opts...)
	if err := page.Load(ctx, product); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

// NewProductUpdatePage builds an empty page; call Load once the product is
// available.
func NewProductUpdatePage(store catalog.Store, opts ...Option) *ProductUpdatePage {
	cfg := newConfig(opts)
	p := &ProductUpdatePage{
		cfg:         cfg,
		store:       store,
		collections: form.NewSelection(nil, nil),
		button:      cfg.button(),
	}
	p.attributes = formset.New[[]string](nil,
		formset.WithConverter[[]string](formset.Strings),
		formset.WithClone(formset.CloneStrings),
	)
	p.form = form.New(productFormData(nil),
		form.WithSubmit(p.submit),
		form.WithButton(p.button),
		form.WithConfirmLeave(cfg.confirmLeave),
		form.WithOnChange(cfg.notify),
		form.WithLogger(cfg.logger.Named("form")),
	)
	return p
}

// Load reseeds the attribute formset, the form values and the collection
// selection from product. A nil product clears the page.
func (p *ProductUpdatePage) Load(ctx context.Context, product *catalog.Product) error {
	selected, err := p.selectedCollections(ctx, product)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.product = product
	p.mu.Unlock()

	p.attributes.Reset(attributeEntries(product))
	p.collections.Reset(selected)
	p.form.Reset(productFormData(product))
	return nil
}

// Product returns the loaded product, nil before Load.
func (p *ProductUpdatePage) Product() *catalog.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.product
}

// Form exposes the underlying form.
func (p *ProductUpdatePage) Form() *form.Form { return p.form }

// Attributes exposes the attribute formset.
func (p *ProductUpdatePage) Attributes() *formset.Formset[[]string] { return p.attributes }

// Button exposes the save bar button.
func (p *ProductUpdatePage) Button() *confirm.Button { return p.button }

// Change applies a field change. Numeric and boolean fields are coerced
// so JSON and terminal input compare equal to seeded values. Collections
// and attributes.<id> are routed through SetCollections and
// ChangeAttribute; any other name must be a field the page seeded.
func (p *ProductUpdatePage) Change(event model.ChangeEvent) error {
	name := strings.TrimSpace(event.Target.Name)
	switch {
	case name == FieldCollections:
		ids, err := coerce(productFields, name, event.Target.Value)
		if err != nil {
			return err
		}
		return p.SetCollections(ids.([]string))
	case strings.HasPrefix(name, FieldAttributes+"."):
		return p.ChangeAttribute(strings.TrimPrefix(name, FieldAttributes+"."), event.Target.Value)
	}
	if _, ok := p.form.Value(name); !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidValue, name)
	}
	value, err := coerce(productFields, name, event.Target.Value)
	if err != nil {
		return err
	}
	return p.form.Change(model.Change(name, value))
}

// ChangeAttribute sets the selected value ids of attribute id.
func (p *ProductUpdatePage) ChangeAttribute(id string, value any) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, ".") {
		return fmt.Errorf("%w: attribute id %q", ErrInvalidValue, id)
	}
	if !p.attributes.HandleChange(model.Change(id, value)) {
		return fmt.Errorf("%w: attribute %s: %T", ErrInvalidValue, id, value)
	}
	entry, _ := p.attributes.Get(id)
	values := entry.Value
	if values == nil {
		values = []string{}
	}
	return p.form.Change(model.Change(FieldAttributes+"."+id, values))
}

// ToggleCollection adds or removes a collection and stores the resulting
// ids in the form.
func (p *ProductUpdatePage) ToggleCollection(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty collection id", ErrInvalidValue)
	}
	p.collections.Toggle(id)
	return p.form.Change(p.collections.Event(FieldCollections))
}

// SearchCollections queries the store and offers the results to the
// collection picker.
func (p *ProductUpdatePage) SearchCollections(ctx context.Context, query string, page catalog.PageRequest) (catalog.Page[catalog.Collection], error) {
	result, err := p.store.SearchCollections(ctx, query, page)
	if err != nil {
		return catalog.Page[catalog.Collection]{}, err
	}
	choices := make([]model.Choice, len(result.Items))
	for i, c := range result.Items {
		choices[i] = model.Choice{Label: c.Name, Value: c.ID}
	}
	p.collections.SetChoices(choices)
	return result, nil
}

// SeoDescriptionPlaceholder is the plain text of the current description
// shown when no SEO description is set.
func (p *ProductUpdatePage) SeoDescriptionPlaceholder() string {
	description, _ := p.form.Value(FieldDescription)
	s, _ := description.(string)
	return seoPlaceholder(s)
}

// SaveDisabled reports whether the host should disable saving.
func (p *ProductUpdatePage) SaveDisabled(disabled bool) bool {
	return disabled || !p.form.HasChanged()
}

// SaveBar is the view of the save button.
func (p *ProductUpdatePage) SaveBar(disabled bool) confirm.View {
	return p.button.View(p.SaveDisabled(disabled), SaveLabel)
}

// Submit saves the form through the store.
func (p *ProductUpdatePage) Submit(ctx context.Context) (form.Result, error) {
	if p.Product() == nil {
		return form.Result{}, ErrNoRecord
	}
	res, err := p.form.Submit(ctx)
	if err != nil || !res.OK() {
		return res, err
	}
	p.refresh(ctx)
	return res, nil
}

// Snapshot captures everything a host renders.
func (p *ProductUpdatePage) Snapshot() Snapshot {
	snap := Snapshot{
		Kind:               KindProduct,
		Data:               p.form.Data(),
		Attributes:         p.attributes.All(),
		Collections:        p.collections.Items(),
		CollectionsDisplay: p.collections.DisplayValue(),
		Errors:             p.form.Errors(),
		FormErrors:         p.form.FormErrors(),
		HasChanged:         p.form.HasChanged(),
		ConfirmLeave:       p.form.ConfirmLeave(),
		SeoPlaceholder:     p.SeoDescriptionPlaceholder(),
		Button:             p.SaveBar(false),
	}
	if product := p.Product(); product != nil {
		snap.ID = product.ID
		snap.HasVariants = product.ProductType.HasVariants
	}
	return snap
}

// Close stops the button's pending reset.
func (p *ProductUpdatePage) Close() {
	p.button.Close()
}

func (p *ProductUpdatePage) submit(ctx context.Context, data map[string]any) ([]model.UserError, error) {
	product := p.Product()
	if product == nil {
		return nil, ErrNoRecord
	}
	input := productInput(product, data)
	p.cfg.logger.Debug("updating product", zap.String("product", product.ID))
	return p.store.UpdateProduct(ctx, product.ID, input)
}

// refresh swaps in the stored product after a save without touching the
// form, which already rebased onto the submitted values.
func (p *ProductUpdatePage) refresh(ctx context.Context) {
	product := p.Product()
	updated, err := p.store.Product(ctx, product.ID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.cfg.logger.Warn("reload product after save", zap.String("product", product.ID), zap.Error(err))
		}
		return
	}
	p.mu.Lock()
	p.product = updated
	p.mu.Unlock()
}

func (p *ProductUpdatePage) selectedCollections(ctx context.Context, product *catalog.Product) ([]form.SelectionItem, error) {
	if product == nil {
		return nil, nil
	}
	items := make([]form.SelectionItem, 0, len(product.CollectionIDs))
	for _, id := range product.CollectionIDs {
		label := id
		c, err := p.store.Collection(ctx, id)
		switch {
		case err == nil:
			label = c.Name
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, err
		}
		items = append(items, form.SelectionItem{ID: id, Label: label})
	}
	return items, nil
}

func attributeEntries(product *catalog.Product) []formset.Entry[[]string] {
	if product == nil {
		return nil
	}
	selected := make(map[string][]string, len(product.Attributes))
	for _, sel := range product.Attributes {
		selected[sel.Attribute.ID] = sel.ValueIDs
	}
	entries := make([]formset.Entry[[]string], 0, len(product.ProductType.Attributes))
	for _, attr := range product.ProductType.Attributes {
		choices := make([]model.Choice, len(attr.Values))
		for i, v := range attr.Values {
			choices[i] = model.Choice{Label: v.Name, Value: v.ID}
		}
		entries = append(entries, formset.Entry[[]string]{
			ID:    attr.ID,
			Label: attr.Name,
			Value: append([]string{}, selected[attr.ID]...),
			Data:  AttributeData{InputType: attr.InputType, Values: choices},
		})
	}
	return entries
}

func productFormData(product *catalog.Product) map[string]any {
	if product == nil {
		return map[string]any{
			FieldName:            "",
			FieldBasePrice:       0.0,
			FieldCategory:        "",
			FieldChargeTaxes:     false,
			FieldCollections:     []string{},
			FieldDescription:     "",
			FieldIsPublished:     false,
			FieldPublicationDate: "",
			FieldSeoTitle:        "",
			FieldSeoDescription:  "",
			FieldAttributes:      map[string]any{},
		}
	}

	attributes := make(map[string]any, len(product.ProductType.Attributes))
	for _, entry := range attributeEntries(product) {
		attributes[entry.ID] = entry.Value
	}
	category := ""
	if product.Category != nil {
		category = product.Category.ID
	}
	data := map[string]any{
		FieldName:            product.Name,
		FieldBasePrice:       product.BasePrice.Amount,
		FieldCategory:        category,
		FieldChargeTaxes:     product.ChargeTaxes,
		FieldCollections:     append([]string{}, product.CollectionIDs...),
		FieldDescription:     product.DescriptionHTML,
		FieldIsPublished:     product.IsPublished,
		FieldPublicationDate: product.PublicationDate,
		FieldSeoTitle:        product.SeoTitle,
		FieldSeoDescription:  product.SeoDescription,
		FieldAttributes:      attributes,
	}
	if !product.ProductType.HasVariants {
		sku, stock := "", 0
		if len(product.Variants) > 0 {
			sku = product.Variants[0].SKU
			stock = product.Variants[0].Quantity
		}
		data[FieldSKU] = sku
		data[FieldStockQuantity] = stock
	}
	return data
}

func productInput(product *catalog.Product, data map[string]any) catalog.ProductUpdateInput {
	input := catalog.ProductUpdateInput{
		Name:            ptr(str(data, FieldName)),
		DescriptionHTML: ptr(str(data, FieldDescription)),
		BasePrice:       ptr(float(data, FieldBasePrice)),
		ChargeTaxes:     ptr(boolean(data, FieldChargeTaxes)),
		IsPublished:     ptr(boolean(data, FieldIsPublished)),
		PublicationDate: ptr(str(data, FieldPublicationDate)),
		SeoTitle:        ptr(str(data, FieldSeoTitle)),
		SeoDescription:  ptr(str(data, FieldSeoDescription)),
		CategoryID:      ptr(str(data, FieldCategory)),
		CollectionIDs:   strs(data, FieldCollections),
	}
	if attrs, ok := data[FieldAttributes].(map[string]any); ok {
		input.Attributes = make(map[string][]string, len(attrs))
		for id := range attrs {
			input.Attributes[id] = strs(attrs, id)
		}
	}
	if !product.ProductType.HasVariants {
		input.SKU = ptr(str(data, FieldSKU))
		input.StockQuantity = ptr(integer(data, FieldStockQuantity))
	}
	return input
}
