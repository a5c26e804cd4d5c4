package trackview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/naijalogix/shipment-tracker/internal/client/api"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/geo"
)

type stubFetcher struct {
	mu       sync.Mutex
	calls    int
	byNumber map[string]*domain.Shipment
	err      error
	// gates, when set, block a lookup until the channel is closed.
	gates map[string]chan struct{}
}

func (f *stubFetcher) Track(ctx context.Context, tn string) (*domain.Shipment, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[tn]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byNumber[tn]
	if !ok {
		return nil, fmt.Errorf("GET /shipments/track/%s: %w", tn, api.ErrNotFound)
	}
	return s, nil
}

type recordingClipboard struct{ text string }

func (c *recordingClipboard) Copy(text string) error { c.text = text; return nil }

func lx1001() *domain.Shipment {
	return &domain.Shipment{
		TrackingNumber:  "LX-1001",
		PickupAddress:   "Lagos Island",
		DeliveryAddress: "Kaduna Central",
		Status:          domain.StatusInTransit,
	}
}

func TestTrack_EndToEnd(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)

	if err := v.Track(context.Background(), "  LX-1001 "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := v.State()
	if st.Loading || st.Message != "" || st.Shipment == nil {
		t.Fatalf("unexpected state %+v", st)
	}

	lagos, _ := geo.Lookup("lagos")
	kaduna, _ := geo.Lookup("kaduna")
	r := st.Resolution
	if r.Pickup.Lat != lagos.Lat || r.Pickup.Lng != lagos.Lng {
		t.Errorf("pickup = %+v, want lagos", r.Pickup)
	}
	if r.Delivery.Lat != kaduna.Lat || r.Delivery.Lng != kaduna.Lng {
		t.Errorf("delivery = %+v, want kaduna", r.Delivery)
	}
	if r.Current == nil || r.Current.Lat != (lagos.Lat+kaduna.Lat)/2 || r.Current.Lng != (lagos.Lng+kaduna.Lng)/2 {
		t.Errorf("current = %+v, want midpoint", r.Current)
	}
	wantActive := [4]bool{true, true, true, false}
	for i, step := range r.Steps {
		if step.Active != wantActive[i] {
			t.Errorf("step %s active = %v, want %v", step.Label, step.Active, wantActive[i])
		}
	}

	rendering, ok := v.Render()
	if !ok {
		t.Fatal("expected a rendering")
	}
	live, isLive := rendering.(LiveMap)
	if !isLive {
		t.Fatalf("expected LiveMap, got %T", rendering)
	}
	if live.Zoom != DefaultZoom || len(live.Markers) != 3 || !live.Markers[2].Pulsing {
		t.Errorf("unexpected live map %+v", live)
	}
}

func TestTrack_EmptyInputSkipsLookup(t *testing.T) {
	f := &stubFetcher{}
	v := New(f, Live)

	if err := v.Track(context.Background(), "   "); !errors.Is(err, ErrEmptyTrackingNumber) {
		t.Fatalf("expected ErrEmptyTrackingNumber, got %v", err)
	}
	if f.calls != 0 {
		t.Error("empty input must not reach the backend")
	}
	if v.State().Message != MsgEmpty {
		t.Errorf("unexpected message %q", v.State().Message)
	}
}

func TestTrack_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("lookup: %w", api.ErrNotFound), MsgNotFound},
		{"backend message", &api.TransportError{Status: 500, Message: "internal server error"}, "internal server error"},
		{"network", &api.TransportError{Err: errors.New("connection refused")}, MsgFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(&stubFetcher{err: tt.err}, Live)
			if err := v.Track(context.Background(), "LX-9"); err == nil {
				t.Fatal("expected error")
			}
			st := v.State()
			if st.Message != tt.want || st.Shipment != nil || st.Loading {
				t.Errorf("unexpected state %+v", st)
			}
		})
	}
}

func TestTrack_NilShipmentIsNotFound(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-0000": nil}}, Live)

	err := v.Track(context.Background(), "LX-0000")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	st := v.State()
	if st.Shipment != nil || st.Resolution != nil || st.Message != MsgNotFound || st.Loading {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestTrack_NewLookupClearsPreviousShipment(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)
	_ = v.Track(context.Background(), "LX-1001")
	_ = v.Track(context.Background(), "LX-404")

	if st := v.State(); st.Shipment != nil || st.Message != MsgNotFound {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestTrack_StaleResponseSuppressed(t *testing.T) {
	slow := make(chan struct{})
	second := lx1001()
	second.TrackingNumber = "LX-2002"
	f := &stubFetcher{
		byNumber: map[string]*domain.Shipment{"LX-1001": lx1001(), "LX-2002": second},
		gates:    map[string]chan struct{}{"LX-1001": slow},
	}
	v := New(f, Live)

	done := make(chan error, 1)
	go func() { done <- v.Track(context.Background(), "LX-1001") }()

	// Wait until the first lookup is in flight.
	for {
		f.mu.Lock()
		n := f.calls
		f.mu.Unlock()
		if n == 1 {
			break
		}
	}

	if err := v.Track(context.Background(), "LX-2002"); err != nil {
		t.Fatal(err)
	}
	close(slow)
	if err := <-done; err != nil {
		t.Fatalf("superseded lookup should finish quietly, got %v", err)
	}

	if got := v.State().Shipment.TrackingNumber; got != "LX-2002" {
		t.Errorf("stale response published: got %s", got)
	}
}

func TestTrack_LateResponseAfterClose(t *testing.T) {
	gate := make(chan struct{})
	f := &stubFetcher{
		byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()},
		gates:    map[string]chan struct{}{"LX-1001": gate},
	}
	v := New(f, Live)

	done := make(chan struct{})
	go func() { _ = v.Track(context.Background(), "LX-1001"); close(done) }()
	for {
		f.mu.Lock()
		n := f.calls
		f.mu.Unlock()
		if n == 1 {
			break
		}
	}
	v.Close()
	close(gate)
	<-done

	if st := v.State(); st.Shipment != nil {
		t.Error("response arriving after Close must be dropped")
	}
	if err := v.Track(context.Background(), "LX-1001"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOnMapError_KeepsShipment(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)
	_ = v.Track(context.Background(), "LX-1001")

	v.OnMapError(errors.New("tile server unavailable"))

	st := v.State()
	if st.Mode != Fallback || st.MapError == nil {
		t.Fatalf("expected fallback mode, got %+v", st)
	}
	if st.Shipment == nil || st.Shipment.TrackingNumber != "LX-1001" {
		t.Fatal("map failure must not drop the fetched shipment")
	}

	rendering, _ := v.Render()
	d, ok := rendering.(FallbackDiagram)
	if !ok {
		t.Fatalf("expected FallbackDiagram, got %T", rendering)
	}
	if d.Badge != SimplifiedBadge || d.JourneyLabel != "In Progress" || d.Transit == nil || !d.Transit.Pulsing {
		t.Errorf("unexpected diagram %+v", d)
	}
	if d.Pickup.Short != "Lagos Island" || d.Delivery.Highlighted {
		t.Errorf("unexpected nodes %+v %+v", d.Pickup, d.Delivery)
	}

	// A second lookup does not bring the live map back.
	_ = v.Track(context.Background(), "LX-1001")
	if v.State().Mode != Fallback {
		t.Error("mode must not return to live automatically")
	}
	v.ToggleMode()
	if v.State().Mode != Live {
		t.Error("toggle should restore the live map")
	}
}

func TestRender_DeliveredDiagram(t *testing.T) {
	s := lx1001()
	s.Status = domain.StatusDelivered
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": s}}, Fallback)
	_ = v.Track(context.Background(), "LX-1001")

	rendering, _ := v.Render()
	d := rendering.(FallbackDiagram)
	if d.JourneyLabel != "Journey Complete" || !d.Delivery.Highlighted || d.Transit != nil {
		t.Errorf("unexpected delivered diagram %+v", d)
	}
}

func TestRender_NoShipment(t *testing.T) {
	v := New(&stubFetcher{}, Live)
	if _, ok := v.Render(); ok {
		t.Error("expected nothing to render")
	}
}

func TestSelectMarker(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)
	_ = v.Track(context.Background(), "LX-1001")

	v.SelectMarker(MarkerPickup)
	if got := v.State().Popup; got != "Pickup: Lagos Island" {
		t.Errorf("unexpected popup %q", got)
	}
	v.SelectMarker(MarkerDelivery)
	if got := v.State().Popup; got != "Delivery: Kaduna Central" {
		t.Errorf("unexpected popup %q", got)
	}
	v.SelectMarker(MarkerCurrent)
	if got := v.State().Popup; got != "" {
		t.Errorf("expected popup closed, got %q", got)
	}
}

func TestShare(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)
	cb := &recordingClipboard{}

	if _, err := v.Share(cb); !errors.Is(err, ErrNothingToShare) {
		t.Errorf("expected ErrNothingToShare, got %v", err)
	}

	_ = v.Track(context.Background(), "LX-1001")
	msg, err := v.Share(cb)
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgCopied || cb.text != "LX-1001" {
		t.Errorf("unexpected share result %q / %q", msg, cb.text)
	}
}

func TestSubscribe_SeesLoadingThenResult(t *testing.T) {
	v := New(&stubFetcher{byNumber: map[string]*domain.Shipment{"LX-1001": lx1001()}}, Live)
	var seen []State
	v.Subscribe(func(s State) { seen = append(seen, s) })

	_ = v.Track(context.Background(), "LX-1001")

	if len(seen) != 2 || !seen[0].Loading || seen[1].Loading || seen[1].Shipment == nil {
		t.Errorf("unexpected snapshots %+v", seen)
	}
}
