// Package catalog is the read-mostly data source behind the dashboard pages:
// products, collections, categories and their attributes, plus the update
// mutations invoked on submit.
package catalog

import (
	"context"
	"errors"

	"github.com/goliatone/go-formstate/pkg/model"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("catalog: not found")

// Money is an amount in a currency.
type Money struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

// AttributeValue is one allowed value of an attribute.
type AttributeValue struct {
	ID   string `json:"id" yaml:"id"`
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
}

// Attribute describes a product type attribute.
type Attribute struct {
	ID        string           `json:"id" yaml:"id"`
	Slug      string           `json:"slug" yaml:"slug"`
	Name      string           `json:"name" yaml:"name"`
	InputType model.InputType  `json:"inputType" yaml:"input_type"`
	Values    []AttributeValue `json:"values" yaml:"values"`
}

// SelectedAttribute pairs an attribute with the value ids set on a product.
type SelectedAttribute struct {
	Attribute Attribute `json:"attribute" yaml:"attribute"`
	ValueIDs  []string  `json:"valueIds" yaml:"value_ids"`
}

// ProductType groups attributes and decides whether products have variants.
type ProductType struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	HasVariants bool        `json:"hasVariants" yaml:"has_variants"`
	Attributes  []Attribute `json:"attributes" yaml:"attributes"`
}

// Variant is a purchasable variant of a product.
type Variant struct {
	ID       string `json:"id" yaml:"id"`
	SKU      string `json:"sku" yaml:"sku"`
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Category is a product category.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Collection is a curated list of products.
type Collection struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	IsPublished        bool   `json:"isPublished" yaml:"is_published"`
	SeoTitle           string `json:"seoTitle" yaml:"seo_title"`
	SeoDescription     string `json:"seoDescription" yaml:"seo_description"`
	BackgroundImageURL string `json:"backgroundImageUrl" yaml:"background_image_url"`
}

// Product is the record edited on the product update page.
type Product struct {
	ID              string              `json:"id" yaml:"id"`
	Name            string              `json:"name" yaml:"name"`
	DescriptionHTML string              `json:"descriptionHtml" yaml:"description_html"`
	BasePrice       Money               `json:"basePrice" yaml:"base_price"`
	ChargeTaxes     bool                `json:"chargeTaxes" yaml:"charge_taxes"`
	IsPublished     bool                `json:"isPublished" yaml:"is_published"`
	PublicationDate string              `json:"publicationDate" yaml:"publication_date"`
	SeoTitle        string              `json:"seoTitle" yaml:"seo_title"`
	SeoDescription  string              `json:"seoDescription" yaml:"seo_description"`
	Category        *Category           `json:"category,omitempty" yaml:"category"`
	CollectionIDs   []string            `json:"collectionIds" yaml:"collection_ids"`
	ProductType     ProductType         `json:"productType" yaml:"product_type"`
	Attributes      []SelectedAttribute `json:"attributes" yaml:"attributes"`
	Variants        []Variant           `json:"variants" yaml:"variants"`
}

// ProductUpdateInput carries the fields a product update may change. Nil
// pointers leave the stored value untouched.
type ProductUpdateInput struct {
	Name            *string             `json:"name,omitempty"`
	DescriptionHTML *string             `json:"descriptionHtml,omitempty"`
	BasePrice       *float64            `json:"basePrice,omitempty"`
	ChargeTaxes     *bool               `json:"chargeTaxes,omitempty"`
	IsPublished     *bool               `json:"isPublished,omitempty"`
	PublicationDate *string             `json:"publicationDate,omitempty"`
	SeoTitle        *string             `json:"seoTitle,omitempty"`
	SeoDescription  *string             `json:"seoDescription,omitempty"`
	CategoryID      *string             `json:"category,omitempty"`
	CollectionIDs   []string            `json:"collections,omitempty"`
	Attributes      map[string][]string `json:"attributes,omitempty"`
	SKU             *string             `json:"sku,omitempty"`
	StockQuantity   *int                `json:"stockQuantity,omitempty"`
}

// CollectionUpdateInput carries the fields a collection update may change.
type CollectionUpdateInput struct {
	Name               *string `json:"name,omitempty"`
	IsPublished        *bool   `json:"isPublished,omitempty"`
	SeoTitle           *string `json:"seoTitle,omitempty"`
	SeoDescription     *string `json:"seoDescription,omitempty"`
	BackgroundImageURL *string `json:"backgroundImageUrl,omitempty"`
}

// PageRequest selects a window of a cursor-paginated list.
type PageRequest struct {
	First int    `json:"first"`
	After string `json:"after,omitempty"`
}

// Page is one window of results. EndCursor feeds the next request's After.
type Page[T any] struct {
	Items       []T    `json:"items"`
	EndCursor   string `json:"endCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

// Store is the data source consumed by the dashboard pages. Reads return
// copies; writes report business-rule violations as user errors and only
// apply when there are none.
type Store interface {
	Product(ctx context.Context, id string) (*Product, error)
	Collection(ctx context.Context, id string) (*Collection, error)
	SearchCollections(ctx context.Context, query string, page PageRequest) (Page[Collection], error)
	SearchCategories(ctx context.Context, query string, page PageRequest) (Page[Category], error)
	UpdateProduct(ctx context.Context, id string, input ProductUpdateInput) ([]model.UserError, error)
	UpdateCollection(ctx context.Context, id string, input CollectionUpdateInput) ([]model.UserError, error)
}
