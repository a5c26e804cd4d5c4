package geo

import (
	"strings"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// CityKey returns the gazetteer key an address resolves to.
func CityKey(address string) string {
	if address == "" {
		return DefaultKey
	}

	lower := strings.ToLower(address)
	for _, e := range gazetteer {
		if strings.Contains(lower, e.key) {
			return e.key
		}
	}
	for _, a := range abbreviations {
		if strings.Contains(lower, a.fragment) {
			return a.key
		}
	}
	return DefaultKey
}

// Resolve maps an address to the coordinates of the city it mentions. Empty or
// unrecognised addresses resolve to the default city.
func Resolve(address string) domain.GeoPoint {
	if p, ok := Lookup(CityKey(address)); ok {
		return p
	}
	return Default()
}

// Midpoint returns the arithmetic midpoint of a and b labelled with name.
func Midpoint(a, b domain.GeoPoint, name string) domain.GeoPoint {
	return domain.GeoPoint{
		Lat:  (a.Lat + b.Lat) / 2,
		Lng:  (a.Lng + b.Lng) / 2,
		Name: name,
	}
}

// SameCity reports whether both addresses resolve to the same gazetteer entry.
func SameCity(a, b string) bool {
	return CityKey(a) == CityKey(b)
}
