package savebar

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/pkg/clock"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
)

func openCollection(t *testing.T, opts ...dashboard.Option) (*dashboard.CollectionUpdatePage, *clock.FakeClock) {
	t.Helper()
	store := catalog.NewMemoryStore()
	fx, err := catalog.DefaultFixtures()
	require.NoError(t, err)
	require.NoError(t, fx.Seed(context.Background(), store))

	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append(opts, dashboard.WithButtonOptions(confirm.WithClock(fake)))
	page, err := dashboard.OpenCollectionPage(context.Background(), store, "col-winter", opts...)
	require.NoError(t, err)
	t.Cleanup(page.Close)
	return page, fake
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestModel_PristineEnterDoesNothing(t *testing.T) {
	page, _ := openCollection(t)
	m := New(context.Background(), page)

	next, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), dashboard.SaveLabel)
	assert.Equal(t, confirm.StateDefault, page.Button().State())
}

func TestModel_SubmitSuccess(t *testing.T) {
	page, fake := openCollection(t)
	require.NoError(t, page.Change(model.Change(dashboard.FieldIsPublished, "true")))
	m := New(context.Background(), page)

	next, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, submitDoneMsg{}, msg)

	next, _ = next.Update(msg)
	res, err := next.(Model).Result()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.OK())
	assert.Contains(t, next.View(), "Saved")

	fake.Advance(confirm.DefaultResetDelay)
	next, _ = next.Update(ButtonMsg(page.Button().Snapshot()))
	assert.NotContains(t, next.View(), "Saved")
	assert.Contains(t, next.View(), dashboard.SaveLabel)
}

func TestModel_SubmitUserErrors(t *testing.T) {
	page, _ := openCollection(t)
	require.NoError(t, page.Change(model.Change(dashboard.FieldName, "")))
	m := New(context.Background(), page)

	next, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	next, _ = next.Update(cmd())

	view := next.View()
	assert.Contains(t, view, "✗")
	assert.Contains(t, view, dashboard.FieldName+":")
}

func TestModel_LoadingSuppressesClick(t *testing.T) {
	page, _ := openCollection(t)
	require.NoError(t, page.Change(model.Change(dashboard.FieldIsPublished, "true")))
	page.Button().SetState(confirm.StateLoading)
	m := New(context.Background(), page)

	_, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Saving")
}

func TestModel_Quit(t *testing.T) {
	page, _ := openCollection(t)
	m := New(context.Background(), page)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("q")},
	} {
		next, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, next.View())
	}
}

func TestBridge_ForwardsButtonTransitions(t *testing.T) {
	bridge := NewBridge()
	page, _ := openCollection(t, dashboard.WithOnButton(bridge.Notify))
	require.NoError(t, page.Change(model.Change(dashboard.FieldIsPublished, "true")))

	_, err := page.Submit(context.Background())
	require.NoError(t, err)

	first := bridge.wait()()
	require.IsType(t, ButtonMsg{}, first)
	assert.Equal(t, confirm.StateLoading, first.(ButtonMsg).State)
	second := bridge.wait()()
	assert.Equal(t, confirm.StateSuccess, second.(ButtonMsg).State)
}

func TestBridge_NotifyNeverBlocks(t *testing.T) {
	bridge := NewBridge()
	for i := 0; i < cap(bridge.ch)+4; i++ {
		bridge.Notify(confirm.Snapshot{State: confirm.StateLoading})
	}
	assert.Len(t, bridge.ch, cap(bridge.ch))
	assert.Nil(t, (*Bridge)(nil).wait())
}

func TestProblems_SortedFieldsThenForm(t *testing.T) {
	res := form.Result{Errors: form.ErrorMapping{
		Fields: map[string][]string{"b": {"bad b"}, "a": {"bad a", "worse a"}},
		Form:   []string{"boom"},
	}}
	assert.Equal(t, []string{"a: bad a", "a: worse a", "b: bad b", "boom"}, problems(res))
}
