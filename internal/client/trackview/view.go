// Package trackview is the client-side model of the public tracking screen:
// one lookup at a time, a derived route and a map that degrades to a
// simplified diagram when the map provider fails.
package trackview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/naijalogix/shipment-tracker/internal/client/api"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

var (
	ErrEmptyTrackingNumber = errors.New("trackview: empty tracking number")
	ErrClosed              = errors.New("trackview: view closed")
	ErrNothingToShare      = errors.New("trackview: no shipment to share")
)

// User-facing messages.
const (
	MsgEmpty    = "Please enter a tracking number"
	MsgNotFound = "Shipment not found. Please check your tracking number."
	MsgFailed   = "Unable to reach the tracking service. Please try again."
	MsgCopied   = "Tracking number copied to clipboard!"
)

// ShipmentFetcher performs the single backend lookup behind Track.
type ShipmentFetcher interface {
	Track(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
}

// Clipboard receives text the user shares.
type Clipboard interface {
	Copy(text string) error
}

// MapMode selects how the route is drawn.
type MapMode int

const (
	Live MapMode = iota
	Fallback
)

func (m MapMode) String() string {
	if m == Fallback {
		return "fallback"
	}
	return "live"
}

// State is an immutable snapshot of the view. Readers get a copy; the view
// swaps whole snapshots and never mutates a published one.
type State struct {
	Shipment   *domain.Shipment
	Resolution *tracking.Resolution
	Message    string
	Loading    bool
	Mode       MapMode
	// MapError is the last failure reported by the map provider.
	MapError error
	// Popup is the open marker detail text, if any.
	Popup string
}

// View is safe for concurrent use.
type View struct {
	fetcher ShipmentFetcher

	mu        sync.Mutex
	gen       uint64
	closed    bool
	listeners []func(State)

	state atomic.Pointer[State]
}

// New returns a view that starts in the given map mode.
func New(fetcher ShipmentFetcher, mode MapMode) *View {
	v := &View{fetcher: fetcher}
	v.state.Store(&State{Mode: mode})
	return v
}

// State returns the current snapshot.
func (v *View) State() State {
	return *v.state.Load()
}

// Subscribe registers fn to be called with every new snapshot. fn runs with
// the view locked and must not call back into methods that change state.
func (v *View) Subscribe(fn func(State)) {
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}

// Track looks up a shipment. Only the most recently started lookup may publish
// its result; earlier ones finish silently. The returned error is the lookup
// error, or nil when the lookup succeeded or was superseded.
func (v *View) Track(ctx context.Context, raw string) error {
	tn := strings.TrimSpace(raw)
	if tn == "" {
		v.update(func(s *State) { s.Message = MsgEmpty })
		return ErrEmptyTrackingNumber
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.gen++
	gen := v.gen
	v.publishLocked(func(s *State) {
		*s = State{Mode: s.Mode, Loading: true}
	})
	v.mu.Unlock()

	sh, err := v.fetcher.Track(ctx, tn)
	if err == nil && sh == nil {
		err = api.ErrNotFound
	}

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		return nil
	}
	v.publishLocked(func(s *State) {
		s.Loading = false
		if err != nil {
			s.Message = messageFor(err)
			return
		}
		res := tracking.Derive(*sh)
		s.Shipment = sh
		s.Resolution = &res
	})
	v.mu.Unlock()

	return err
}

func messageFor(err error) string {
	if errors.Is(err, api.ErrNotFound) {
		return MsgNotFound
	}
	var te *api.TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return MsgFailed
}

// ToggleMode switches between the live map and the simplified diagram.
func (v *View) ToggleMode() {
	v.update(func(s *State) {
		if s.Mode == Live {
			s.Mode = Fallback
		} else {
			s.Mode = Live
		}
	})
}

// OnMapError is called by the map provider when it cannot draw. The view
// drops to the fallback diagram and stays there until the user toggles back.
// The fetched shipment is kept.
func (v *View) OnMapError(err error) {
	v.update(func(s *State) {
		s.Mode = Fallback
		s.MapError = err
	})
}

// SelectMarker opens the detail popup for a pickup or delivery marker.
// Other kinds close it.
func (v *View) SelectMarker(kind MarkerKind) {
	v.update(func(s *State) {
		s.Popup = ""
		if s.Resolution == nil {
			return
		}
		switch kind {
		case MarkerPickup:
			s.Popup = "Pickup: " + s.Resolution.Pickup.Address
		case MarkerDelivery:
			s.Popup = "Delivery: " + s.Resolution.Delivery.Address
		}
	})
}

// Share copies the displayed tracking number and returns the confirmation
// text to show the user.
func (v *View) Share(cb Clipboard) (string, error) {
	st := v.State()
	if st.Shipment == nil || st.Shipment.TrackingNumber == "" {
		return "", ErrNothingToShare
	}
	if err := cb.Copy(st.Shipment.TrackingNumber); err != nil {
		return "", err
	}
	return MsgCopied, nil
}

// Close stops the view. Lookups still in flight are discarded when they return.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.listeners = nil
	v.mu.Unlock()
}

func (v *View) update(fn func(*State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.publishLocked(fn)
}

// publishLocked copies the current snapshot, applies fn, stores the result
// and notifies listeners. v.mu must be held.
func (v *View) publishLocked(fn func(*State)) {
	next := *v.state.Load()
	fn(&next)
	v.state.Store(&next)
	for _, l := range v.listeners {
		l(next)
	}
}
