// Package filter owns the gallery's filter state: which values each dimension
// offers for the selected version, which items survive the selection, and how
// the selection maps onto the shareable URL.
package filter

import "strings"

// Dimension is one independent filter axis.
type Dimension string

const (
	DimensionVersion    Dimension = "version"
	DimensionFont       Dimension = "font"
	DimensionColor      Dimension = "color"
	DimensionBackground Dimension = "bg"
)

// All is the canonical "no constraint" value. The empty string means the same.
const All = "all"

// Background selection values. "1" keeps packs drawn on an opaque canvas,
// "0" keeps transparent packs.
const (
	BackgroundWith    = "1"
	BackgroundWithout = "0"
)

// Dimensions lists every dimension in page order.
var Dimensions = []Dimension{DimensionVersion, DimensionFont, DimensionColor, DimensionBackground}

// ParseDimension maps a form field or query parameter name to its dimension.
func ParseDimension(name string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Dimensions {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// Unconstrained reports whether value places no constraint on its dimension.
func Unconstrained(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// Selection holds the current value of each dimension.
type Selection struct {
	Version    string `json:"version"`
	Font       string `json:"font"`
	Color      string `json:"color"`
	Background string `json:"bg"`
}

// Get returns the value of d.
func (s Selection) Get(d Dimension) string {
	switch d {
	case DimensionVersion:
		return s.Version
	case DimensionFont:
		return s.Font
	case DimensionColor:
		return s.Color
	case DimensionBackground:
		return s.Background
	default:
		return ""
	}
}

// Set replaces the value of d.
func (s *Selection) Set(d Dimension, value string) {
	switch d {
	case DimensionVersion:
		s.Version = value
	case DimensionFont:
		s.Font = value
	case DimensionColor:
		s.Color = value
	case DimensionBackground:
		s.Background = value
	}
}

// Reset records a value that was dropped because its dimension no longer
// offers it.
type Reset struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
}
