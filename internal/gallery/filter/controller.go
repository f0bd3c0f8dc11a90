package filter

import (
	"strings"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
)

// Controller owns one viewer's filter state over a read-only catalog.
// It is not safe for concurrent use; create one per request or session.
type Controller struct {
	catalog *catalog.Catalog
	sel     Selection
	options Options

	// derived is the cross-product index of the selected version for
	// ShapeVersionSets catalogs.
	derived     []catalog.Item
	derivations int
}

// NewController starts on the first catalog version with every other
// dimension unconstrained.
func NewController(cat *catalog.Catalog) *Controller {
	c := &Controller{
		catalog: cat,
		sel:     Selection{Font: All, Color: All, Background: All},
	}
	c.setVersion(c.firstVersion())
	return c
}

// Selection returns the current selection in canonical form: unconstrained
// dimensions hold All.
func (c *Controller) Selection() Selection { return c.sel }

// Options returns the option lists for the selected version.
func (c *Controller) Options() Options { return c.options }

// Catalog returns the catalog the controller filters.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// Items returns every item of the selected version before filtering.
func (c *Controller) Items() []catalog.Item {
	if c.catalog != nil && c.catalog.Shape == catalog.ShapeVersionSets {
		return c.derived
	}
	v, ok := c.catalog.Version(c.sel.Version)
	if !ok {
		return nil
	}
	return v.Items
}

// VisibleItems returns the selected version's items that match the selection.
func (c *Controller) VisibleItems() []catalog.Item {
	return ComputeVisibleItems(c.Items(), c.sel)
}

// OnFilterChange sets one dimension. Changing the version re-derives the font
// and colour option lists and drops selections they no longer offer. Values a
// dimension does not offer are reset and reported.
func (c *Controller) OnFilterChange(d Dimension, value string) []Reset {
	value = strings.TrimSpace(value)
	if d == DimensionVersion {
		var resets []Reset
		version, ok := c.resolveVersion(value)
		if !ok {
			resets = append(resets, Reset{Dimension: DimensionVersion, Value: value})
		}
		c.setVersion(version)
		for _, dep := range []Dimension{DimensionFont, DimensionColor} {
			if r, ok := c.validate(dep); !ok {
				resets = append(resets, r)
			}
		}
		return resets
	}

	if _, known := ParseDimension(string(d)); !known {
		return nil
	}
	c.sel.Set(d, value)
	if r, ok := c.validate(d); !ok {
		return []Reset{r}
	}
	return nil
}

// Apply replaces the whole selection and returns the values that had to be
// reset. Font and colour are checked against the new version's option lists.
func (c *Controller) Apply(sel Selection) []Reset {
	c.sel.Font = sel.Font
	c.sel.Color = sel.Color
	c.sel.Background = sel.Background
	resets := c.OnFilterChange(DimensionVersion, sel.Version)
	if r, ok := c.validate(DimensionBackground); !ok {
		resets = append(resets, r)
	}
	return resets
}

// Derivations counts how many times the cross-product index was rebuilt.
func (c *Controller) Derivations() int { return c.derivations }

func (c *Controller) firstVersion() string {
	names := c.catalog.VersionNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// resolveVersion maps an absent value to the first version. An unknown
// version also falls back to the first one but is reported.
func (c *Controller) resolveVersion(value string) (string, bool) {
	if Unconstrained(value) {
		return c.firstVersion(), true
	}
	if _, ok := c.catalog.Version(value); ok {
		return value, true
	}
	return c.firstVersion(), false
}

func (c *Controller) setVersion(version string) {
	if version == c.sel.Version && c.options.Version != nil {
		return
	}
	c.sel.Version = version
	c.options = InitFilters(c.catalog, version)

	c.derived = nil
	if c.catalog != nil && c.catalog.Shape == catalog.ShapeVersionSets {
		if v, ok := c.catalog.Version(version); ok {
			c.derived = DeriveItems(version, v.Sets)
		}
		c.derivations++
	}
}

// validate canonicalises d and resets it to All when its option list does not
// offer the current value.
func (c *Controller) validate(d Dimension) (Reset, bool) {
	value := strings.TrimSpace(c.sel.Get(d))
	if Unconstrained(value) {
		c.sel.Set(d, All)
		return Reset{}, true
	}
	if c.options.Has(d, value) {
		c.sel.Set(d, value)
		return Reset{}, true
	}
	c.sel.Set(d, All)
	return Reset{Dimension: d, Value: value}, false
}
