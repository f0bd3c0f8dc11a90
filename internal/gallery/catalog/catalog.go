package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Shape identifies which of the supported document layouts a catalog was decoded from.
type Shape int

const (
	// ShapeVersionItems maps each version name to a list of pre-built items.
	ShapeVersionItems Shape = iota + 1
	// ShapeVersionSets maps each version name to font and colour id sets whose
	// cross product yields the items.
	ShapeVersionSets
	// ShapeFlat is a single list of items that each carry their own version.
	ShapeFlat
)

// String returns the stable name used in logs and CLI output.
func (s Shape) String() string {
	switch s {
	case ShapeVersionItems:
		return "version-items"
	case ShapeVersionSets:
		return "version-sets"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// ErrMalformed reports a catalog document that does not match any supported shape.
var ErrMalformed = errors.New("catalog: malformed document")

// Entry is one id/name pair of an ordered id set.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sets holds the font and colour universes of a version for ShapeVersionSets.
type Sets struct {
	Fonts  []Entry `json:"fonts"`
	Colors []Entry `json:"colors"`
}

// Version is one catalog version in document order.
type Version struct {
	Name  string
	Items []Item
	Sets  *Sets
}

// Catalog is the decoded, read-only gallery catalog.
type Catalog struct {
	Shape    Shape
	Versions []Version
}

// VersionNames returns version names in document order.
func (c *Catalog) VersionNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Versions))
	for _, v := range c.Versions {
		names = append(names, v.Name)
	}
	return names
}

// Version looks up a version by name.
func (c *Catalog) Version(name string) (*Version, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Versions {
		if c.Versions[i].Name == name {
			return &c.Versions[i], true
		}
	}
	return nil, false
}

// Item is a single gallery entry (one icon pack).
type Item struct {
	Version     string `json:"version"`
	FontID      string `json:"font_id"`
	FontName    string `json:"font_name,omitempty"`
	ColorID     string `json:"color_id"`
	ColorName   string `json:"color_name,omitempty"`
	Variant     string `json:"variant,omitempty"`
	Transparent bool   `json:"transparent"`

	// Attributes keeps every field of the source record so templates can
	// address values the gallery itself does not interpret.
	Attributes map[string]any `json:"-"`
}

// HasBackground reports whether the pack icons are drawn on an opaque canvas.
func (i Item) HasBackground() bool {
	return !i.Transparent
}

// PackID is the artefact stem the pack builder uses for this font/colour pair.
func (i Item) PackID() string {
	return strings.Trim(i.FontID+"-"+i.ColorID, "-")
}

// Fields flattens the item into the map handed to item templates. Source
// attributes come first and interpreted fields override them.
func (i Item) Fields() map[string]any {
	fields := make(map[string]any, len(i.Attributes)+12)
	for k, v := range i.Attributes {
		fields[k] = v
	}
	fields["version"] = i.Version
	fields["font_id"] = i.FontID
	fields["font_name"] = firstNonEmpty(i.FontName, i.FontID)
	fields["color_id"] = i.ColorID
	fields["color_name"] = firstNonEmpty(i.ColorName, i.ColorID)
	fields["transparent"] = i.Transparent
	fields["background"] = i.HasBackground()
	fields["has_background"] = i.HasBackground()
	fields["pack_id"] = i.PackID()
	fields["thumb"] = fmt.Sprintf("%s-thumb-16x9.jpg", i.PackID())
	if i.Variant != "" {
		fields["variant"] = i.Variant
	}
	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
