package scraper

import (
	"context"
	"fmt"
	"time"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

// clicker performs the wait, scroll, wait, click sequence every UI
// interaction goes through.
type clicker struct {
	adapter Adapter
	timeout time.Duration
	settle  time.Duration
}

func (c clicker) click(ctx context.Context, loc Locator) error {
	el, err := c.adapter.WaitVisible(ctx, loc, c.timeout)
	if err != nil {
		return fmt.Errorf("wait visible %s: %w", loc, err)
	}
	if err := c.adapter.ScrollIntoView(ctx, el); err != nil {
		return fmt.Errorf("scroll to %s: %w", loc, err)
	}
	el, err = c.adapter.WaitClickable(ctx, loc, c.timeout)
	if err != nil {
		return fmt.Errorf("wait clickable %s: %w", loc, err)
	}
	if err := c.adapter.Click(ctx, el); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (c clicker) pause(ctx context.Context) error {
	if c.settle <= 0 {
		return nil
	}
	return c.adapter.Sleep(ctx, c.settle)
}

// FilterState tracks which descriptors are visible in the remote column
// view. Between two reveals the view must pass through Empty.
type FilterState struct {
	clicker
	sel    Selectors
	logger *utils.Logger

	visible []models.ColumnDescriptor
	unknown bool
}

// NewFilterState returns an Empty filter state bound to adapter.
func NewFilterState(adapter Adapter, sel Selectors, timeout, settle time.Duration, logger *utils.Logger) *FilterState {
	return &FilterState{
		clicker: clicker{adapter: adapter, timeout: timeout, settle: settle},
		sel:     sel,
		logger:  logger,
	}
}

// Reset records the configuration a freshly loaded page shows. It is the
// only way out of the unknown state.
func (f *FilterState) Reset(defaults []models.ColumnDescriptor) {
	f.visible = append([]models.ColumnDescriptor(nil), defaults...)
	f.unknown = false
}

// IsEmpty reports whether no descriptor is visible.
func (f *FilterState) IsEmpty() bool { return !f.unknown && len(f.visible) == 0 }

// Visible returns a copy of the visible descriptors.
func (f *FilterState) Visible() []models.ColumnDescriptor {
	return append([]models.ColumnDescriptor(nil), f.visible...)
}

// ToEmpty hides every visible descriptor. It is a no-op when the view is
// already empty.
func (f *FilterState) ToEmpty(ctx context.Context) error {
	if f.unknown {
		return ErrFilterUnknown
	}
	if len(f.visible) == 0 {
		return nil
	}
	if err := f.commit(ctx, f.visible); err != nil {
		return fmt.Errorf("filter: hide %d columns: %w", len(f.visible), err)
	}
	f.visible = nil
	return nil
}

// Reveal shows exactly set. The view must be Empty.
func (f *FilterState) Reveal(ctx context.Context, set []models.ColumnDescriptor) error {
	if f.unknown {
		return ErrFilterUnknown
	}
	if len(set) == 0 {
		return ErrEmptyReveal
	}
	if len(f.visible) > 0 {
		return ErrFilterNotEmpty
	}
	if err := f.commit(ctx, set); err != nil {
		return fmt.Errorf("filter: reveal %s: %w", set[0].Key, err)
	}
	f.visible = append([]models.ColumnDescriptor(nil), set...)
	return nil
}

// commit opens the edit panel, toggles every descriptor in toggle and
// applies, settling after each click. Any failure leaves the view unknown.
func (f *FilterState) commit(ctx context.Context, toggle []models.ColumnDescriptor) error {
	f.unknown = true

	if err := f.click(ctx, f.sel.EditColumns); err != nil {
		return err
	}
	if err := f.pause(ctx); err != nil {
		return err
	}
	for _, d := range toggle {
		if err := f.click(ctx, f.sel.CheckboxFor(d)); err != nil {
			return err
		}
		if err := f.pause(ctx); err != nil {
			return err
		}
	}
	if err := f.click(ctx, f.sel.ApplyColumns); err != nil {
		return err
	}
	if err := f.pause(ctx); err != nil {
		return err
	}

	f.unknown = false
	f.logger.Debug("[filter] Toggled %d columns", len(toggle))
	return nil
}
