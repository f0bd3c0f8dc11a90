package filter

import (
	"strings"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
)

// DeriveItems expands a version's font and colour sets into every
// font × colour × {transparent, opaque} combination, fonts outermost.
func DeriveItems(version string, sets *catalog.Sets) []catalog.Item {
	if sets == nil {
		return nil
	}
	items := make([]catalog.Item, 0, 2*len(sets.Fonts)*len(sets.Colors))
	for _, font := range sets.Fonts {
		for _, color := range sets.Colors {
			for _, transparent := range []bool{true, false} {
				items = append(items, catalog.Item{
					Version:     version,
					FontID:      font.ID,
					FontName:    font.Name,
					ColorID:     color.ID,
					ColorName:   color.Name,
					Transparent: transparent,
				})
			}
		}
	}
	return items
}

// ComputeVisibleItems keeps the items that match every constrained dimension
// of sel, preserving order. items must already be the selected version's
// slice. A background value other than "0" or "1" matches nothing.
func ComputeVisibleItems(items []catalog.Item, sel Selection) []catalog.Item {
	visible := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if matches(item, sel) {
			visible = append(visible, item)
		}
	}
	return visible
}

func matches(item catalog.Item, sel Selection) bool {
	if !Unconstrained(sel.Font) && item.FontID != strings.TrimSpace(sel.Font) {
		return false
	}
	if !Unconstrained(sel.Color) && item.ColorID != strings.TrimSpace(sel.Color) {
		return false
	}
	if Unconstrained(sel.Background) {
		return true
	}
	switch strings.TrimSpace(sel.Background) {
	case BackgroundWith:
		return item.HasBackground()
	case BackgroundWithout:
		return item.Transparent
	default:
		return false
	}
}
