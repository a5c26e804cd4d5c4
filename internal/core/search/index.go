package search

import (
	"sync"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// Index holds a shipment collection and the currently visible subsequence.
// SetTerm re-filters after the debounce delay; SetItems and SetStatus
// re-filter immediately.
type Index struct {
	mu       sync.RWMutex
	items    []domain.Shipment
	term     string
	status   string
	visible  []domain.Shipment
	debounce *Debouncer
	onChange func([]domain.Shipment)
}

// NewIndex returns an empty Index. onChange, if non-nil, is invoked with the
// new visible set after every re-filter.
func NewIndex(delay time.Duration, onChange func([]domain.Shipment)) *Index {
	return &Index{
		status:   StatusAll,
		debounce: NewDebouncer(delay),
		onChange: onChange,
	}
}

// SetItems replaces the collection, e.g. after the initial load.
func (ix *Index) SetItems(items []domain.Shipment) {
	ix.mu.Lock()
	ix.items = items
	ix.mu.Unlock()
	ix.refilter()
}

// SetTerm records a keystroke and schedules a debounced re-filter.
func (ix *Index) SetTerm(term string) {
	ix.mu.Lock()
	ix.term = term
	ix.mu.Unlock()
	ix.debounce.Trigger(ix.refilter)
}

// SetStatus changes the status filter.
func (ix *Index) SetStatus(status string) {
	ix.mu.Lock()
	ix.status = status
	ix.mu.Unlock()
	ix.refilter()
}

// Visible returns the current filtered subsequence.
func (ix *Index) Visible() []domain.Shipment {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.visible
}

// Total returns the size of the unfiltered collection.
func (ix *Index) Total() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// Close cancels any pending re-filter.
func (ix *Index) Close() {
	ix.debounce.Stop()
}

func (ix *Index) refilter() {
	ix.mu.Lock()
	visible := FilterByStatus(Filter(ix.items, ix.term), ix.status)
	ix.visible = visible
	cb := ix.onChange
	ix.mu.Unlock()

	if cb != nil {
		cb(visible)
	}
}
