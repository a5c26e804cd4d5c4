// Package mapprovider draws tracking routes: a static-map image service for
// the live map and a plain-text renderer for the simplified diagram.
package mapprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/client/trackview"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// DefaultBaseURL is the static-map endpoint used when none is configured.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/staticmap"

var ErrNoAPIKey = errors.New("mapprovider: no API key configured")

// ErrorReporter receives provider failures. *trackview.View satisfies it.
type ErrorReporter interface {
	OnMapError(err error)
}

// StaticMap renders LiveMaps as static-map image URLs.
type StaticMap struct {
	baseURL    string
	apiKey     string
	size       string
	httpClient *http.Client
}

// NewStaticMap returns a provider keyed by apiKey. An empty baseURL uses
// DefaultBaseURL.
func NewStaticMap(baseURL, apiKey string, timeout time.Duration) *StaticMap {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &StaticMap{
		baseURL:    baseURL,
		apiKey:     apiKey,
		size:       "640x400",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL builds the image URL for m.
func (p *StaticMap) URL(m trackview.LiveMap) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}
	q := url.Values{}
	q.Set("center", latLng(m.Center))
	q.Set("zoom", strconv.Itoa(m.Zoom))
	q.Set("size", p.size)
	for _, mk := range m.Markers {
		q.Add("markers", markerParam(mk))
	}
	q.Set("key", p.apiKey)
	return p.baseURL + "?" + q.Encode(), nil
}

// Load builds the URL for m and checks that the provider serves it. Any
// failure is passed to report before being returned.
func (p *StaticMap) Load(ctx context.Context, m trackview.LiveMap, report ErrorReporter) (string, error) {
	u, err := p.load(ctx, m)
	if err != nil {
		report.OnMapError(err)
		return "", err
	}
	return u, nil
}

func (p *StaticMap) load(ctx context.Context, m trackview.LiveMap) (string, error) {
	u, err := p.URL(m)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("mapprovider: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mapprovider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mapprovider: HTTP %d", resp.StatusCode)
	}
	return u, nil
}

func latLng(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 4, 64)
}

func markerParam(mk trackview.Marker) string {
	color := "blue"
	switch mk.Kind {
	case trackview.MarkerDelivery:
		color = "green"
	case trackview.MarkerCurrent:
		color = "red"
	}
	label := ""
	if mk.Kind != trackview.MarkerCurrent && mk.Label != "" {
		label = "|label:" + mk.Label
	}
	return "color:" + color + label + "|" + latLng(mk.Point)
}
