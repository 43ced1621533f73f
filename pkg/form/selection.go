package form

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formstate/pkg/model"
)

// SelectionItem is one selected option with its display label.
type SelectionItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Selection keeps the ordered set of picked options of a multiselect
// (collections on a product page) alongside their labels, so the input can
// display names while the form only stores ids.
type Selection struct {
	mu      sync.RWMutex
	choices []model.Choice
	items   []SelectionItem
}

// NewSelection seeds a selection. choices are the options currently
// offered; they are only used to look up labels of newly picked ids.
func NewSelection(choices []model.Choice, selected []SelectionItem) *Selection {
	return &Selection{
		choices: append([]model.Choice(nil), choices...),
		items:   append([]SelectionItem(nil), selected...),
	}
}

// SetChoices replaces the offered options, e.g. after a search.
func (s *Selection) SetChoices(choices []model.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices = append([]model.Choice(nil), choices...)
}

// Reset replaces the selected items.
func (s *Selection) Reset(selected []SelectionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]SelectionItem(nil), selected...)
}

// Toggle removes id when selected, otherwise appends it with the label of
// the matching choice (the id itself when no choice matches). It returns
// the resulting ids and whether id was added.
func (s *Selection) Toggle(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return s.idsLocked(), false
		}
	}
	label := id
	for _, choice := range s.choices {
		if choice.Value == id {
			label = choice.Label
			break
		}
	}
	s.items = append(s.items, SelectionItem{ID: id, Label: label})
	return s.idsLocked(), true
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

// Items returns the selected items.
func (s *Selection) Items() []SelectionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SelectionItem(nil), s.items...)
}

// DisplayValue joins the selected labels for the input's text.
func (s *Selection) DisplayValue() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]string, len(s.items))
	for i, item := range s.items {
		labels[i] = item.Label
	}
	return strings.Join(labels, ", ")
}

// Event returns the change event that stores the selected ids under name.
func (s *Selection) Event(name string) model.ChangeEvent {
	return model.Change(name, s.IDs())
}

func (s *Selection) idsLocked() []string {
	ids := make([]string, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ID
	}
	return ids
}
