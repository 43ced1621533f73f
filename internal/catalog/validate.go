package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/model"
)

const publicationDateLayout = "2006-01-02"

// lookups resolve references while validating an update. Each store
// supplies its own.
type lookups struct {
	category   func(id string) (*Category, error)
	collection func(id string) (bool, error)
}

// applyProductUpdate validates input against p and, when there are no user
// errors, returns the updated copy. p is not modified.
func applyProductUpdate(p Product, input ProductUpdateInput, look lookups) (Product, []model.UserError, error) {
	var errs []model.UserError
	out := cloneProduct(p)

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			errs = append(errs, model.UserError{Field: "name", Message: "This field is required."})
		}
		out.Name = name
	}
	if input.DescriptionHTML != nil {
		out.DescriptionHTML = *input.DescriptionHTML
	}
	if input.BasePrice != nil {
		if *input.BasePrice < 0 {
			errs = append(errs, model.UserError{Field: "basePrice", Message: "Price cannot be negative."})
		}
		out.BasePrice.Amount = *input.BasePrice
	}
	if input.ChargeTaxes != nil {
		out.ChargeTaxes = *input.ChargeTaxes
	}
	if input.IsPublished != nil {
		out.IsPublished = *input.IsPublished
	}
	if input.PublicationDate != nil {
		date := strings.TrimSpace(*input.PublicationDate)
		if date != "" {
			if _, err := time.Parse(publicationDateLayout, date); err != nil {
				errs = append(errs, model.UserError{Field: "publicationDate", Message: "Enter a valid date."})
			}
		}
		out.PublicationDate = date
	}
	if input.SeoTitle != nil {
		out.SeoTitle = *input.SeoTitle
	}
	if input.SeoDescription != nil {
		out.SeoDescription = *input.SeoDescription
	}

	if input.CategoryID != nil {
		id := strings.TrimSpace(*input.CategoryID)
		if id == "" {
			out.Category = nil
		} else {
			category, err := look.category(id)
			if err != nil {
				return Product{}, nil, err
			}
			if category == nil {
				errs = append(errs, model.UserError{Field: "category", Message: fmt.Sprintf("Unknown category %q.", id)})
			}
			out.Category = category
		}
	}

	if input.CollectionIDs != nil {
		for _, id := range input.CollectionIDs {
			ok, err := look.collection(id)
			if err != nil {
				return Product{}, nil, err
			}
			if !ok {
				errs = append(errs, model.UserError{Field: "collections", Message: fmt.Sprintf("Unknown collection %q.", id)})
			}
		}
		out.CollectionIDs = slices.Clone(input.CollectionIDs)
	}

	if input.Attributes != nil {
		attrErrs, selected := applyAttributes(out.ProductType, out.Attributes, input.Attributes)
		errs = append(errs, attrErrs...)
		out.Attributes = selected
	}

	if !out.ProductType.HasVariants && (input.SKU != nil || input.StockQuantity != nil) {
		if len(out.Variants) == 0 {
			out.Variants = []Variant{{ID: out.ID + "-default", Name: out.Name}}
		}
		if input.SKU != nil {
			out.Variants[0].SKU = strings.TrimSpace(*input.SKU)
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				errs = append(errs, model.UserError{Field: "stockQuantity", Message: "Quantity cannot be negative."})
			}
			out.Variants[0].Quantity = *input.StockQuantity
		}
	}

	if len(errs) > 0 {
		return Product{}, errs, nil
	}
	return out, nil, nil
}

// applyAttributes rebuilds the selected attributes in product type order,
// taking values from input where given.
func applyAttributes(pt ProductType, current []SelectedAttribute, input map[string][]string) ([]model.UserError, []SelectedAttribute) {
	var errs []model.UserError
	known := make(map[string]Attribute, len(pt.Attributes))
	for _, attr := range pt.Attributes {
		known[attr.ID] = attr
	}
	for id := range input {
		if _, ok := known[id]; !ok {
			errs = append(errs, model.UserError{Field: "attributes", Message: fmt.Sprintf("Unknown attribute %q.", id)})
		}
	}

	existing := make(map[string][]string, len(current))
	for _, sel := range current {
		existing[sel.Attribute.ID] = sel.ValueIDs
	}

	out := make([]SelectedAttribute, 0, len(pt.Attributes))
	for _, attr := range pt.Attributes {
		values, ok := input[attr.ID]
		if !ok {
			values = existing[attr.ID]
		}
		if attr.InputType == model.InputTypeDropdown && len(values) > 1 {
			errs = append(errs, model.UserError{Field: "attributes", Message: fmt.Sprintf("%s accepts a single value.", attr.Name)})
		}
		for _, value := range values {
			if !hasValue(attr, value) {
				errs = append(errs, model.UserError{Field: "attributes", Message: fmt.Sprintf("Unknown value %q for %s.", value, attr.Name)})
			}
		}
		out = append(out, SelectedAttribute{Attribute: attr, ValueIDs: slices.Clone(values)})
	}
	return errs, out
}

func hasValue(attr Attribute, id string) bool {
	if attr.InputType == model.InputTypeText {
		return true
	}
	for _, value := range attr.Values {
		if value.ID == id {
			return true
		}
	}
	return false
}

func applyCollectionUpdate(c Collection, input CollectionUpdateInput) (Collection, []model.UserError) {
	var errs []model.UserError
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			errs = append(errs, model.UserError{Field: "name", Message: "This field is required."})
		}
		c.Name = name
	}
	if input.IsPublished != nil {
		c.IsPublished = *input.IsPublished
	}
	if input.SeoTitle != nil {
		c.SeoTitle = *input.SeoTitle
	}
	if input.SeoDescription != nil {
		c.SeoDescription = *input.SeoDescription
	}
	if input.BackgroundImageURL != nil {
		c.BackgroundImageURL = strings.TrimSpace(*input.BackgroundImageURL)
	}
	if len(errs) > 0 {
		return Collection{}, errs
	}
	return c, nil
}

func cloneProduct(p Product) Product {
	out := p
	if p.Category != nil {
		category := *p.Category
		out.Category = &category
	}
	out.CollectionIDs = slices.Clone(p.CollectionIDs)
	out.ProductType.Attributes = cloneAttributes(p.ProductType.Attributes)
	out.Variants = slices.Clone(p.Variants)
	if p.Attributes != nil {
		out.Attributes = make([]SelectedAttribute, len(p.Attributes))
		for i, sel := range p.Attributes {
			out.Attributes[i] = SelectedAttribute{
				Attribute: cloneAttributes([]Attribute{sel.Attribute})[0],
				ValueIDs:  slices.Clone(sel.ValueIDs),
			}
		}
	}
	return out
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, attr := range attrs {
		out[i] = attr
		out[i].Values = slices.Clone(attr.Values)
	}
	return out
}
