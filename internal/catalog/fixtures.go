package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// Fixtures is the YAML document used to seed a store.
type Fixtures struct {
	Categories  []Category   `yaml:"categories"`
	Collections []Collection `yaml:"collections"`
	Products    []Product    `yaml:"products"`
}

// Seeder is implemented by stores that accept fixture records.
type Seeder interface {
	PutCategory(ctx context.Context, c Category) error
	PutCollection(ctx context.Context, c Collection) error
	PutProduct(ctx context.Context, p Product) error
}

// LoadFixtures decodes a fixtures document. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("catalog: decode fixtures: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path. An empty path loads the
// built-in demo catalog.
func LoadFixturesFile(path string) (*Fixtures, error) {
	if path == "" {
		return DefaultFixtures()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

// DefaultFixtures returns the built-in demo catalog.
func DefaultFixtures() (*Fixtures, error) {
	return LoadFixtures(bytes.NewReader(defaultFixtures))
}

// Seed writes every fixture record into s. Categories and collections go
// first so product references resolve.
func (fx *Fixtures) Seed(ctx context.Context, s Seeder) error {
	for _, c := range fx.Categories {
		if err := s.PutCategory(ctx, c); err != nil {
			return err
		}
	}
	for _, c := range fx.Collections {
		if err := s.PutCollection(ctx, c); err != nil {
			return err
		}
	}
	for _, p := range fx.Products {
		if err := s.PutProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (fx *Fixtures) validate() error {
	seen := make(map[string]struct{})
	check := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("catalog: fixtures: %s without id", kind)
		}
		key := kind + "/" + id
		if _, dup := seen[key]; dup {
			return fmt.Errorf("catalog: fixtures: duplicate %s %q", kind, id)
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, c := range fx.Categories {
		if err := check(kindCategory, c.ID); err != nil {
			return err
		}
	}
	for _, c := range fx.Collections {
		if err := check(kindCollection, c.ID); err != nil {
			return err
		}
	}
	for _, p := range fx.Products {
		if err := check(kindProduct, p.ID); err != nil {
			return err
		}
	}
	return nil
}
