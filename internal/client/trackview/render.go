package trackview

import (
	"strings"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

// DefaultZoom is the zoom level of the live map.
const DefaultZoom = 7

// SimplifiedBadge marks the fallback diagram.
const SimplifiedBadge = "Simplified View"

// MarkerKind identifies a marker on the live map.
type MarkerKind int

const (
	MarkerPickup MarkerKind = iota
	MarkerDelivery
	MarkerCurrent
)

// Rendering is either a LiveMap or a FallbackDiagram.
type Rendering interface {
	rendering()
}

// Marker is one pin on the live map.
type Marker struct {
	Kind    MarkerKind
	Point   domain.GeoPoint
	Label   string
	Pulsing bool
}

// LiveMap is drawn by the map provider.
type LiveMap struct {
	Center  domain.GeoPoint
	Zoom    int
	Markers []Marker
	// Popup is the open marker detail text, empty when closed.
	Popup  string
	Status domain.Presentation
	Steps  [4]tracking.Step
}

// Node is one stop of the fallback diagram.
type Node struct {
	Label   string
	Address string
	// Short is the first comma-separated part of the address.
	Short       string
	Highlighted bool
	Pulsing     bool
}

// FallbackDiagram is the provider-free drawing of the route.
type FallbackDiagram struct {
	Badge        string
	JourneyLabel string
	Pickup       Node
	Transit      *Node
	Delivery     Node
	Status       domain.Presentation
	Steps        [4]tracking.Step
}

func (LiveMap) rendering()         {}
func (FallbackDiagram) rendering() {}

// Render draws the current state. It reports false when there is no shipment.
func (v *View) Render() (Rendering, bool) {
	st := v.State()
	if st.Resolution == nil {
		return nil, false
	}
	if st.Mode == Fallback {
		return fallbackDiagram(*st.Resolution), true
	}
	return liveMap(*st.Resolution, st.Popup), true
}

func liveMap(r tracking.Resolution, popup string) LiveMap {
	m := LiveMap{
		Center: r.MapCenter,
		Zoom:   DefaultZoom,
		Popup:  popup,
		Status: r.Presentation,
		Steps:  r.Steps,
		Markers: []Marker{
			{Kind: MarkerPickup, Point: r.Pickup.GeoPoint, Label: "P"},
			{Kind: MarkerDelivery, Point: r.Delivery.GeoPoint, Label: "D"},
		},
	}
	if r.InTransit() {
		m.Markers = append(m.Markers, Marker{Kind: MarkerCurrent, Point: *r.Current, Label: r.Current.Name, Pulsing: true})
	}
	return m
}

func fallbackDiagram(r tracking.Resolution) FallbackDiagram {
	d := FallbackDiagram{
		Badge:        SimplifiedBadge,
		JourneyLabel: r.JourneyLabel(),
		Pickup:       Node{Label: "Pickup", Address: r.Pickup.Address, Short: shortAddress(r.Pickup.Address, "Origin")},
		Delivery: Node{
			Label:       "Delivery",
			Address:     r.Delivery.Address,
			Short:       shortAddress(r.Delivery.Address, "Destination"),
			Highlighted: r.Status == domain.StatusDelivered,
		},
		Status: r.Presentation,
		Steps:  r.Steps,
	}
	if r.InTransit() {
		d.Transit = &Node{Label: "Current", Short: r.Current.Name, Pulsing: true}
	}
	return d
}

func shortAddress(addr, fallback string) string {
	first, _, _ := strings.Cut(addr, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return fallback
}
