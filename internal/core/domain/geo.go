package domain

// GeoPoint is an approximate map position. Name is the gazetteer city name,
// or a label such as "En Route" for computed points.
type GeoPoint struct {
	Lat  float64 `json:"lat" bson:"lat"`
	Lng  float64 `json:"lng" bson:"lng"`
	Name string  `json:"name" bson:"name,omitempty"`
}
