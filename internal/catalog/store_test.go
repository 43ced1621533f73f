package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
)

type testStore interface {
	Store
	Seeder
}

func seededStores(t *testing.T) map[string]testStore {
	t.Helper()
	ctx := context.Background()

	sqlStore, err := OpenSQLStore(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })

	stores := map[string]testStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlStore,
	}
	fx, err := DefaultFixtures()
	if err != nil {
		t.Fatalf("default fixtures: %v", err)
	}
	for name, s := range stores {
		if err := fx.Seed(ctx, s); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return stores
}

func ptr[T any](v T) *T { return &v }

func TestStore_ProductNotFound(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Product(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Product(missing) error = %v, want ErrNotFound", err)
			}
			_, err = s.Collection(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Collection(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_ProductReturnsCopy(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p, err := s.Product(ctx, "prod-tshirt")
			if err != nil {
				t.Fatalf("Product: %v", err)
			}
			p.Name = "mutated"
			p.CollectionIDs[0] = "mutated"

			again, err := s.Product(ctx, "prod-tshirt")
			if err != nil {
				t.Fatalf("Product: %v", err)
			}
			if again.Name != "Polo shirt" || again.CollectionIDs[0] != "col-summer" {
				t.Fatalf("stored product was mutated through a read: %+v", again)
			}
		})
	}
}

func TestStore_SearchCollectionsPaginates(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := s.SearchCollections(ctx, "", PageRequest{First: 2})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if got := collectionNames(first.Items); !cmp.Equal(got, []string{"Featured products", "Summer collection"}) {
				t.Fatalf("first page = %v", got)
			}
			if !first.HasNextPage || first.EndCursor != "col-summer" {
				t.Fatalf("first page cursor = %q, hasNext=%v", first.EndCursor, first.HasNextPage)
			}

			second, err := s.SearchCollections(ctx, "", PageRequest{First: 2, After: first.EndCursor})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if got := collectionNames(second.Items); !cmp.Equal(got, []string{"Winter sale"}) {
				t.Fatalf("second page = %v", got)
			}
			if second.HasNextPage {
				t.Fatalf("second page should be the last")
			}
		})
	}
}

func TestStore_SearchUnknownCursorIsEmpty(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			page, err := s.SearchCollections(ctx, "", PageRequest{First: 2, After: "col-deleted"})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(page.Items) != 0 || page.HasNextPage || page.EndCursor != "" {
				t.Fatalf("unknown cursor page = %+v, want empty last page", page)
			}

			cats, err := s.SearchCategories(ctx, "", PageRequest{After: "cat-deleted"})
			if err != nil {
				t.Fatalf("search categories: %v", err)
			}
			if len(cats.Items) != 0 || cats.HasNextPage {
				t.Fatalf("unknown category cursor page = %+v, want empty", cats)
			}
		})
	}
}

func TestStore_SearchFiltersByName(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			page, err := s.SearchCategories(context.Background(), " JUI ", PageRequest{})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(page.Items) != 1 || page.Items[0].ID != "cat-juices" {
				t.Fatalf("SearchCategories(jui) = %+v", page.Items)
			}

			page, err = s.SearchCategories(context.Background(), "%", PageRequest{})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(page.Items) != 0 {
				t.Fatalf("wildcard characters must match literally, got %+v", page.Items)
			}
		})
	}
}

func TestStore_UpdateProduct(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userErrs, err := s.UpdateProduct(ctx, "prod-tshirt", ProductUpdateInput{
				Name:          ptr("Linen shirt"),
				BasePrice:     ptr(31.0),
				CategoryID:    ptr("cat-apparel"),
				CollectionIDs: []string{"col-summer", "col-featured"},
				Attributes: map[string][]string{
					"attr-material": {"val-cotton", "val-linen"},
				},
			})
			if err != nil || len(userErrs) > 0 {
				t.Fatalf("UpdateProduct = %v, %v", userErrs, err)
			}

			p, err := s.Product(ctx, "prod-tshirt")
			if err != nil {
				t.Fatalf("Product: %v", err)
			}
			if p.Name != "Linen shirt" || p.BasePrice.Amount != 31 {
				t.Fatalf("product not updated: %+v", p)
			}
			if diff := cmp.Diff([]string{"col-summer", "col-featured"}, p.CollectionIDs); diff != "" {
				t.Fatalf("collections mismatch (-want +got):\n%s", diff)
			}
			got := map[string][]string{}
			for _, sel := range p.Attributes {
				got[sel.Attribute.ID] = sel.ValueIDs
			}
			want := map[string][]string{
				"attr-color":    {"val-blue"},
				"attr-material": {"val-cotton", "val-linen"},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_UpdateProductUserErrors(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userErrs, err := s.UpdateProduct(ctx, "prod-tshirt", ProductUpdateInput{
				Name:            ptr("  "),
				BasePrice:       ptr(-1.0),
				PublicationDate: ptr("yesterday"),
				CategoryID:      ptr("cat-nope"),
				CollectionIDs:   []string{"col-nope"},
				Attributes: map[string][]string{
					"attr-color": {"val-blue", "val-red"},
				},
			})
			if err != nil {
				t.Fatalf("UpdateProduct error: %v", err)
			}
			fields := map[string]int{}
			for _, ue := range userErrs {
				fields[ue.Field]++
			}
			want := map[string]int{
				"name":            1,
				"basePrice":       1,
				"publicationDate": 1,
				"category":        1,
				"collections":     1,
				"attributes":      1,
			}
			if diff := cmp.Diff(want, fields); diff != "" {
				t.Fatalf("user error fields mismatch (-want +got):\n%s", diff)
			}

			p, err := s.Product(ctx, "prod-tshirt")
			if err != nil {
				t.Fatalf("Product: %v", err)
			}
			if p.Name != "Polo shirt" {
				t.Fatalf("rejected update must not be applied, name = %q", p.Name)
			}
		})
	}
}

func TestStore_UpdateSimpleProductStock(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userErrs, err := s.UpdateProduct(ctx, "prod-juice", ProductUpdateInput{
				SKU:           ptr(" AJ-2 "),
				StockQuantity: ptr(5),
			})
			if err != nil || len(userErrs) > 0 {
				t.Fatalf("UpdateProduct = %v, %v", userErrs, err)
			}
			p, err := s.Product(ctx, "prod-juice")
			if err != nil {
				t.Fatalf("Product: %v", err)
			}
			if p.Variants[0].SKU != "AJ-2" || p.Variants[0].Quantity != 5 {
				t.Fatalf("variant = %+v", p.Variants[0])
			}

			userErrs, err = s.UpdateProduct(ctx, "prod-juice", ProductUpdateInput{StockQuantity: ptr(-3)})
			if err != nil {
				t.Fatalf("UpdateProduct error: %v", err)
			}
			if diff := cmp.Diff([]model.UserError{{Field: "stockQuantity", Message: "Quantity cannot be negative."}}, userErrs); diff != "" {
				t.Fatalf("user errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_UpdateCollection(t *testing.T) {
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userErrs, err := s.UpdateCollection(ctx, "col-winter", CollectionUpdateInput{
				IsPublished:    ptr(true),
				SeoDescription: ptr("Warm layers."),
			})
			if err != nil || len(userErrs) > 0 {
				t.Fatalf("UpdateCollection = %v, %v", userErrs, err)
			}
			c, err := s.Collection(ctx, "col-winter")
			if err != nil {
				t.Fatalf("Collection: %v", err)
			}
			if !c.IsPublished || c.SeoDescription != "Warm layers." {
				t.Fatalf("collection not updated: %+v", c)
			}

			userErrs, err = s.UpdateCollection(ctx, "col-winter", CollectionUpdateInput{Name: ptr("")})
			if err != nil {
				t.Fatalf("UpdateCollection error: %v", err)
			}
			if len(userErrs) != 1 || userErrs[0].Field != "name" {
				t.Fatalf("user errors = %+v", userErrs)
			}

			_, err = s.UpdateCollection(ctx, "missing", CollectionUpdateInput{})
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("UpdateCollection(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLoadFixtures_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "products:\n  - id: p1\n    colour: red\n",
		"missing id":   "categories:\n  - name: Nameless\n",
		"duplicate id": "collections:\n  - id: c1\n    name: A\n  - id: c1\n    name: B\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFixtures(strings.NewReader(doc)); err == nil {
				t.Fatalf("LoadFixtures accepted %q", doc)
			}
		})
	}
}

func TestLoadFixtures_Empty(t *testing.T) {
	fx, err := LoadFixtures(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFixtures(empty): %v", err)
	}
	if len(fx.Products) != 0 {
		t.Fatalf("expected no products, got %d", len(fx.Products))
	}
}

func collectionNames(items []Collection) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Name
	}
	return out
}
