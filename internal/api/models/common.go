// Package models defines the request and response payloads of the
// HTTP API, plus conversions from the domain types.
package models

// LatLon is a coordinate pair as it appears on the wire.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
