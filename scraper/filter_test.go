package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

func newTestFilter(t *testing.T) (*FilterState, *fakeUI, models.CatalogType) {
	t.Helper()
	cat := testCatalog()
	ui := newFakeUI(cat, nil)
	require.NoError(t, ui.Navigate(context.Background(), "https://example.test/catalog/running-shoes"))
	f := NewFilterState(ui, DefaultSelectors(), time.Second, time.Millisecond, utils.NewNopLogger())
	f.Reset(cat.DefaultVisible())
	return f, ui, cat
}

func descriptor(t *testing.T, cat models.CatalogType, key string) models.ColumnDescriptor {
	t.Helper()
	d, found := cat.Descriptor(key)
	require.True(t, found, key)
	return d
}

func TestFilterStateRevealRequiresEmpty(t *testing.T) {
	ctx := context.Background()
	f, ui, cat := newTestFilter(t)
	brand := descriptor(t, cat, "brand")
	weight := descriptor(t, cat, "weight")

	assert.ErrorIs(t, f.Reveal(ctx, []models.ColumnDescriptor{brand}), ErrFilterNotEmpty)
	assert.Empty(t, ui.commits, "a rejected reveal must not touch the UI")

	require.NoError(t, f.ToEmpty(ctx))
	assert.True(t, f.IsEmpty())
	assert.Empty(t, ui.visibleIDs())

	require.NoError(t, f.Reveal(ctx, []models.ColumnDescriptor{brand}))
	assert.Equal(t, []string{"fact-brand"}, ui.visibleIDs())
	assert.Equal(t, []models.ColumnDescriptor{brand}, f.Visible())

	assert.ErrorIs(t, f.Reveal(ctx, []models.ColumnDescriptor{weight}), ErrFilterNotEmpty)
	assert.Equal(t, []string{"fact-brand"}, ui.visibleIDs())

	require.NoError(t, f.ToEmpty(ctx))
	require.NoError(t, f.Reveal(ctx, []models.ColumnDescriptor{weight}))
	assert.Equal(t, []string{"fact-weight"}, ui.visibleIDs())
}

func TestFilterStateToEmptyIsNoopWhenEmpty(t *testing.T) {
	f, ui, _ := newTestFilter(t)
	f.Reset(nil)

	require.NoError(t, f.ToEmpty(context.Background()))
	assert.Empty(t, ui.commits)
	assert.Zero(t, ui.sleeps)
}

func TestFilterStateRejectsEmptyReveal(t *testing.T) {
	f, _, _ := newTestFilter(t)
	f.Reset(nil)

	assert.ErrorIs(t, f.Reveal(context.Background(), nil), ErrEmptyReveal)
}

func TestFilterStateSettlesAfterEachClick(t *testing.T) {
	ctx := context.Background()
	f, ui, cat := newTestFilter(t)
	hidden := len(f.Visible())
	require.Equal(t, 3, hidden)

	require.NoError(t, f.ToEmpty(ctx))
	assert.Equal(t, hidden+2, ui.sleeps, "edit panel, each checkbox, apply")

	ui.sleeps = 0
	require.NoError(t, f.Reveal(ctx, []models.ColumnDescriptor{descriptor(t, cat, "weight")}))
	assert.Equal(t, 3, ui.sleeps)
}

func TestFilterStateTimeoutLeavesStateUnknown(t *testing.T) {
	ctx := context.Background()
	f, ui, cat := newTestFilter(t)
	weight := descriptor(t, cat, "weight")

	require.NoError(t, f.ToEmpty(ctx))
	ui.timeouts[DefaultSelectors().CheckboxFor(weight)] = 1

	err := f.Reveal(ctx, []models.ColumnDescriptor{weight})
	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, f.IsEmpty())
	assert.ErrorIs(t, f.ToEmpty(ctx), ErrFilterUnknown)
	assert.ErrorIs(t, f.Reveal(ctx, []models.ColumnDescriptor{weight}), ErrFilterUnknown)

	require.NoError(t, ui.Navigate(ctx, "https://example.test/catalog/running-shoes"))
	f.Reset(cat.DefaultVisible())
	require.NoError(t, f.ToEmpty(ctx))
	require.NoError(t, f.Reveal(ctx, []models.ColumnDescriptor{weight}))
	assert.Equal(t, []string{"fact-weight"}, ui.visibleIDs())
}
