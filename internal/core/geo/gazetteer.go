// Package geo maps free-text addresses to approximate coordinates using a
// fixed city gazetteer. No external geocoding service is involved, so
// resolution is cheap, deterministic and never fails.
package geo

import "github.com/naijalogix/shipment-tracker/internal/core/domain"

// DefaultKey is the gazetteer entry used whenever nothing matches.
const DefaultKey = "abuja"

type entry struct {
	key   string
	point domain.GeoPoint
}

// gazetteer is scanned in declaration order; the first substring hit wins.
// Keys are compared exactly as written against the lower-cased address.
var gazetteer = [...]entry{
	{"lagos", domain.GeoPoint{Lat: 6.5244, Lng: 3.3792, Name: "Lagos"}},
	{"abuja", domain.GeoPoint{Lat: 9.0765, Lng: 7.3986, Name: "Abuja"}},
	{"kaduna", domain.GeoPoint{Lat: 10.5264, Lng: 7.4381, Name: "Kaduna"}},
	{"kano", domain.GeoPoint{Lat: 12.0022, Lng: 8.5919, Name: "Kano"}},
	{"ibadan", domain.GeoPoint{Lat: 7.3775, Lng: 3.9470, Name: "Ibadan"}},
	{"portHarcourt", domain.GeoPoint{Lat: 4.8156, Lng: 7.0498, Name: "Port Harcourt"}},
	{"benin", domain.GeoPoint{Lat: 6.3176, Lng: 5.6145, Name: "Benin"}},
	{"maiduguri", domain.GeoPoint{Lat: 11.8333, Lng: 13.1500, Name: "Maiduguri"}},
}

// abbreviations are tried in this order only after no full key matched.
var abbreviations = [...]struct{ fragment, key string }{
	{"lag", "lagos"},
	{"abj", "abuja"},
	{"kan", "kano"},
	{"kad", "kaduna"},
	{"ibd", "ibadan"},
}

// Lookup returns the point registered under key.
func Lookup(key string) (domain.GeoPoint, bool) {
	for _, e := range gazetteer {
		if e.key == key {
			return e.point, true
		}
	}
	return domain.GeoPoint{}, false
}

// Keys returns the gazetteer keys in declaration order.
func Keys() []string {
	keys := make([]string, len(gazetteer))
	for i, e := range gazetteer {
		keys[i] = e.key
	}
	return keys
}

// Default returns the fallback point.
func Default() domain.GeoPoint {
	p, _ := Lookup(DefaultKey)
	return p
}
