package dashboard

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
)

// FieldBackgroundImageURL is the collection background image field.
const FieldBackgroundImageURL = "backgroundImageUrl"

var collectionFields = map[string]coercer{
	FieldName:               stringField,
	FieldIsPublished:        boolField,
	FieldSeoTitle:           stringField,
	FieldSeoDescription:     stringField,
	FieldBackgroundImageURL: stringField,
}

// CollectionUpdatePage is the collection edit screen.
type CollectionUpdatePage struct {
	cfg    config
	store  catalog.Store
	form   *form.Form
	button *confirm.Button

	mu         sync.RWMutex
	collection *catalog.Collection
}

// OpenCollectionPage loads collection id from store and builds its page.
func OpenCollectionPage(ctx context.Context, store catalog.Store, id string, opts ...Option) (*CollectionUpdatePage, error) {
	c, err := store.Collection(ctx, id)
	if err != nil {
		return nil, err
	}
	page := NewCollectionUpdatePage(store, opts...)
	page.Load(c)
	return page, nil
}

// NewCollectionUpdatePage builds an empty page.
func NewCollectionUpdatePage(store catalog.Store, opts ...Option) *CollectionUpdatePage {
	cfg := newConfig(opts)
	p := &CollectionUpdatePage{
		cfg:    cfg,
		store:  store,
		button: cfg.button(),
	}
	p.form = form.New(collectionFormData(nil),
		form.WithSubmit(p.submit),
		form.WithButton(p.button),
		form.WithConfirmLeave(cfg.confirmLeave),
		form.WithOnChange(cfg.notify),
		form.WithLogger(cfg.logger.Named("form")),
	)
	return p
}

// Load reseeds the form from c. A nil collection clears the page.
func (p *CollectionUpdatePage) Load(c *catalog.Collection) {
	p.mu.Lock()
	p.collection = c
	p.mu.Unlock()
	p.form.Reset(collectionFormData(c))
}

// Collection returns the loaded collection, nil before Load.
func (p *CollectionUpdatePage) Collection() *catalog.Collection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.collection
}

// Form exposes the underlying form.
func (p *CollectionUpdatePage) Form() *form.Form { return p.form }

// Button exposes the save bar button.
func (p *CollectionUpdatePage) Button() *confirm.Button { return p.button }

// Change applies a field change.
func (p *CollectionUpdatePage) Change(event model.ChangeEvent) error {
	name := strings.TrimSpace(event.Target.Name)
	value, err := coerce(collectionFields, name, event.Target.Value)
	if err != nil {
		return err
	}
	return p.form.Change(model.Change(name, value))
}

// SaveDisabled reports whether the host should disable saving.
func (p *CollectionUpdatePage) SaveDisabled(disabled bool) bool {
	return disabled || !p.form.HasChanged()
}

// SaveBar is the view of the save button.
func (p *CollectionUpdatePage) SaveBar(disabled bool) confirm.View {
	return p.button.View(p.SaveDisabled(disabled), SaveLabel)
}

// Submit saves the form through the store.
func (p *CollectionUpdatePage) Submit(ctx context.Context) (form.Result, error) {
	if p.Collection() == nil {
		return form.Result{}, ErrNoRecord
	}
	res, err := p.form.Submit(ctx)
	if err != nil || !res.OK() {
		return res, err
	}
	id := p.Collection().ID
	updated, err := p.store.Collection(ctx, id)
	if err != nil {
		p.cfg.logger.Warn("reload collection after save", zap.String("collection", id), zap.Error(err))
		return res, nil
	}
	p.mu.Lock()
	p.collection = updated
	p.mu.Unlock()
	return res, nil
}

// Snapshot captures everything a host renders.
func (p *CollectionUpdatePage) Snapshot() Snapshot {
	snap := Snapshot{
		Kind:         KindCollection,
		Data:         p.form.Data(),
		Errors:       p.form.Errors(),
		FormErrors:   p.form.FormErrors(),
		HasChanged:   p.form.HasChanged(),
		ConfirmLeave: p.form.ConfirmLeave(),
		Button:       p.SaveBar(false),
	}
	if c := p.Collection(); c != nil {
		snap.ID = c.ID
	}
	return snap
}

// Close stops the button's pending reset.
func (p *CollectionUpdatePage) Close() {
	p.button.Close()
}

func (p *CollectionUpdatePage) submit(ctx context.Context, data map[string]any) ([]model.UserError, error) {
	c := p.Collection()
	if c == nil {
		return nil, ErrNoRecord
	}
	p.cfg.logger.Debug("updating collection", zap.String("collection", c.ID))
	return p.store.UpdateCollection(ctx, c.ID, catalog.CollectionUpdateInput{
		Name:               ptr(str(data, FieldName)),
		IsPublished:        ptr(boolean(data, FieldIsPublished)),
		SeoTitle:           ptr(str(data, FieldSeoTitle)),
		SeoDescription:     ptr(str(data, FieldSeoDescription)),
		BackgroundImageURL: ptr(str(data, FieldBackgroundImageURL)),
	})
}

func collectionFormData(c *catalog.Collection) map[string]any {
	if c == nil {
		c = &catalog.Collection{}
	}
	return map[string]any{
		FieldName:               c.Name,
		FieldIsPublished:        c.IsPublished,
		FieldSeoTitle:           c.SeoTitle,
		FieldSeoDescription:     c.SeoDescription,
		FieldBackgroundImageURL: c.BackgroundImageURL,
	}
}
