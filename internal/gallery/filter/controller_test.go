package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
)

func setsCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Shape: catalog.ShapeVersionSets,
		Versions: []catalog.Version{
			{Name: "6.7.2", Sets: &catalog.Sets{
				Fonts:  []catalog.Entry{{ID: "solid", Name: "Solid"}, {ID: "thin", Name: "Thin"}, {ID: "duotone", Name: "Duotone"}},
				Colors: []catalog.Entry{{ID: "white", Name: "White"}, {ID: "blue", Name: "Blue"}},
			}},
			{Name: "6.5.0", Sets: &catalog.Sets{
				Fonts:  []catalog.Entry{{ID: "solid", Name: "Solid"}},
				Colors: []catalog.Entry{{ID: "red", Name: "Red"}},
			}},
		},
	}
}

func itemsCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Shape: catalog.ShapeVersionItems,
		Versions: []catalog.Version{
			{Name: "v2", Items: []catalog.Item{
				{Version: "v2", FontID: "solid", FontName: "Solid", ColorID: "white", ColorName: "White"},
				{Version: "v2", FontID: "solid", FontName: "Solid", ColorID: "white", ColorName: "White", Transparent: true},
				{Version: "v2", FontID: "thin", ColorID: "light-blue"},
			}},
			{Name: "v1", Items: []catalog.Item{
				{Version: "v1", FontID: "regular", FontName: "Regular", ColorID: "white", ColorName: "White"},
			}},
		},
	}
}

func TestScenarioAllFiltersOpen(t *testing.T) {
	t.Parallel()

	cat := &catalog.Catalog{
		Shape: catalog.ShapeVersionSets,
		Versions: []catalog.Version{{Name: "v1", Sets: &catalog.Sets{
			Fonts:  []catalog.Entry{{ID: "a", Name: "A"}},
			Colors: []catalog.Entry{{ID: "r", Name: "Red"}},
		}}},
	}

	c := NewController(cat)
	resets := c.Apply(Selection{Version: "v1", Font: All, Color: All, Background: All})
	require.Empty(t, resets)

	items := c.VisibleItems()
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].FontID)
	require.Equal(t, "r", items[0].ColorID)
	require.True(t, items[0].Transparent)
	require.Equal(t, "a", items[1].FontID)
	require.Equal(t, "r", items[1].ColorID)
	require.False(t, items[1].Transparent)

	require.Empty(t, c.OnFilterChange(DimensionBackground, BackgroundWith))
	items = c.VisibleItems()
	require.Len(t, items, 1)
	require.False(t, items[0].Transparent)
}

func TestDeriveItemsIsExhaustive(t *testing.T) {
	t.Parallel()

	for _, v := range setsCatalog().Versions {
		items := DeriveItems(v.Name, v.Sets)
		require.Len(t, items, 2*len(v.Sets.Fonts)*len(v.Sets.Colors))

		type key struct {
			font, color string
			transparent bool
		}
		seen := make(map[key]int)
		for _, item := range items {
			require.Equal(t, v.Name, item.Version)
			seen[key{item.FontID, item.ColorID, item.Transparent}]++
		}
		for _, f := range v.Sets.Fonts {
			for _, c := range v.Sets.Colors {
				require.Equal(t, 1, seen[key{f.ID, c.ID, true}])
				require.Equal(t, 1, seen[key{f.ID, c.ID, false}])
			}
		}
	}

	require.Empty(t, DeriveItems("v1", nil))
}

func TestVisibleItemsSubsetAndMonotonic(t *testing.T) {
	t.Parallel()

	for _, cat := range []*catalog.Catalog{setsCatalog(), itemsCatalog()} {
		for _, version := range cat.VersionNames() {
			opts := InitFilters(cat, version)
			fonts := append(values(opts.Font), All)
			colors := append(values(opts.Color), All)
			bgs := append(values(opts.Background), All)

			c := NewController(cat)
			c.OnFilterChange(DimensionVersion, version)
			all := c.Items()

			for _, f := range fonts {
				for _, col := range colors {
					for _, bg := range bgs {
						sel := Selection{Version: version, Font: f, Color: col, Background: bg}
						visible := ComputeVisibleItems(all, sel)
						require.Subset(t, all, visible)

						for _, d := range []Dimension{DimensionFont, DimensionColor, DimensionBackground} {
							relaxed := sel
							relaxed.Set(d, All)
							require.GreaterOrEqual(t, len(ComputeVisibleItems(all, relaxed)), len(visible))
							require.Subset(t, ComputeVisibleItems(all, relaxed), visible)
						}
					}
				}
			}
		}
	}
}

func TestVersionSwitchReplacesOptionsAndResetsStale(t *testing.T) {
	t.Parallel()

	c := NewController(setsCatalog())
	require.Equal(t, "6.7.2", c.Selection().Version)
	require.Equal(t, []string{"solid", "thin", "duotone"}, values(c.Options().Font))

	require.Empty(t, c.OnFilterChange(DimensionFont, "thin"))
	require.Empty(t, c.OnFilterChange(DimensionColor, "blue"))
	require.Empty(t, c.OnFilterChange(DimensionBackground, BackgroundWithout))

	resets := c.OnFilterChange(DimensionVersion, "6.5.0")
	require.ElementsMatch(t, []Reset{
		{Dimension: DimensionFont, Value: "thin"},
		{Dimension: DimensionColor, Value: "blue"},
	}, resets)

	sel := c.Selection()
	require.Equal(t, Selection{Version: "6.5.0", Font: All, Color: All, Background: BackgroundWithout}, sel)
	require.Equal(t, []string{"solid"}, values(c.Options().Font))
	require.Equal(t, []string{"red"}, values(c.Options().Color))

	items := c.VisibleItems()
	require.Len(t, items, 1)
	require.Equal(t, "red", items[0].ColorID)
	require.True(t, items[0].Transparent)
}

func TestVersionSwitchKeepsSharedSelections(t *testing.T) {
	t.Parallel()

	c := NewController(setsCatalog())
	require.Empty(t, c.OnFilterChange(DimensionFont, "solid"))
	require.Empty(t, c.OnFilterChange(DimensionVersion, "6.5.0"))
	require.Equal(t, "solid", c.Selection().Font)
}

func TestDerivedIndexRebuiltOnlyOnVersionChange(t *testing.T) {
	t.Parallel()

	c := NewController(setsCatalog())
	require.Equal(t, 1, c.Derivations())
	require.Len(t, c.Items(), 12)

	c.OnFilterChange(DimensionFont, "solid")
	c.OnFilterChange(DimensionBackground, BackgroundWith)
	_ = c.VisibleItems()
	c.OnFilterChange(DimensionVersion, "6.7.2")
	require.Equal(t, 1, c.Derivations())

	c.OnFilterChange(DimensionVersion, "6.5.0")
	require.Equal(t, 2, c.Derivations())
	require.Len(t, c.Items(), 2, "index must be replaced, not appended to")

	c.OnFilterChange(DimensionVersion, "6.7.2")
	require.Equal(t, 3, c.Derivations())
	require.Len(t, c.Items(), 12)
}

func TestItemsCatalogNeverDerives(t *testing.T) {
	t.Parallel()

	c := NewController(itemsCatalog())
	c.OnFilterChange(DimensionVersion, "v1")
	require.Zero(t, c.Derivations())
	require.Len(t, c.Items(), 1)
}

func TestInvalidValuesAreReset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sel    Selection
		want   Selection
		resets []Reset
	}{
		{
			name: "absent values",
			sel:  Selection{},
			want: Selection{Version: "v2", Font: All, Color: All, Background: All},
		},
		{
			name:   "unknown version",
			sel:    Selection{Version: "v9", Font: "solid"},
			want:   Selection{Version: "v2", Font: "solid", Color: All, Background: All},
			resets: []Reset{{Dimension: DimensionVersion, Value: "v9"}},
		},
		{
			name:   "font from another version",
			sel:    Selection{Version: "v2", Font: "regular", Color: "white"},
			want:   Selection{Version: "v2", Font: All, Color: "white", Background: All},
			resets: []Reset{{Dimension: DimensionFont, Value: "regular"}},
		},
		{
			name:   "colour id used as font",
			sel:    Selection{Version: "v2", Font: "white"},
			want:   Selection{Version: "v2", Font: All, Color: All, Background: All},
			resets: []Reset{{Dimension: DimensionFont, Value: "white"}},
		},
		{
			name:   "background out of range",
			sel:    Selection{Version: "v1", Background: "yes"},
			want:   Selection{Version: "v1", Font: All, Color: All, Background: All},
			resets: []Reset{{Dimension: DimensionBackground, Value: "yes"}},
		},
		{
			name: "empty and all are equivalent",
			sel:  Selection{Version: "v1", Font: "", Color: "ALL", Background: " "},
			want: Selection{Version: "v1", Font: All, Color: All, Background: All},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(itemsCatalog())
			resets := c.Apply(tt.sel)
			require.Equal(t, tt.want, c.Selection())
			require.ElementsMatch(t, tt.resets, resets)
		})
	}
}

func TestInitFiltersFromItems(t *testing.T) {
	t.Parallel()

	opts := InitFilters(itemsCatalog(), "v2")
	require.Equal(t, []Option{{Value: "v2", Label: "v2"}, {Value: "v1", Label: "v1"}}, opts.Version)
	require.Equal(t, []Option{{Value: "solid", Label: "Solid"}, {Value: "thin", Label: "Thin"}}, opts.Font)
	require.Equal(t, []Option{{Value: "white", Label: "White"}, {Value: "light-blue", Label: "Light Blue"}}, opts.Color)
	require.Equal(t, BackgroundOptions(), opts.Background)

	missing := InitFilters(itemsCatalog(), "v9")
	require.Len(t, missing.Version, 2)
	require.Empty(t, missing.Font)
	require.Empty(t, missing.Color)
}

func TestURLRoundTripReproducesVisibleItems(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		{Version: "6.7.2"},
		{Version: "6.7.2", Font: "thin", Background: BackgroundWith},
		{Version: "6.5.0", Color: "red", Background: BackgroundWithout},
		{Version: "6.7.2", Font: "duotone", Color: "blue"},
	}

	for _, sel := range selections {
		c := NewController(setsCatalog())
		require.Empty(t, c.Apply(sel))

		query := c.SyncToURL(url.Values{"utm_source": {"share"}})
		require.Equal(t, "share", query.Get("utm_source"))

		restored := NewController(setsCatalog())
		require.Empty(t, restored.SyncFromURL(query))
		require.Equal(t, c.Selection(), restored.Selection())
		require.Equal(t, c.VisibleItems(), restored.VisibleItems())
	}
}

func TestSelectionToURL(t *testing.T) {
	t.Parallel()

	opts := Options{
		Version:    []Option{{Value: "v1"}},
		Font:       []Option{{Value: "solid"}},
		Background: BackgroundOptions(),
	}
	current := url.Values{"color": {"stale"}, "font": {"thin"}, "page": {"2"}}
	sel := Selection{Version: "v1", Font: All, Color: All, Background: BackgroundWith}

	got := SelectionToURL(sel, opts, current)
	require.Equal(t, url.Values{
		"version": {"v1"},
		"color":   {"stale"},
		"bg":      {"1"},
		"page":    {"2"},
	}, got)
	require.Equal(t, []string{"thin"}, current["font"], "input must not be mutated")
}

func TestSelectionFromURL(t *testing.T) {
	t.Parallel()

	q, err := url.ParseQuery("version=6.7.2&font=+solid+&bg=0&color=")
	require.NoError(t, err)
	require.Equal(t, Selection{Version: "6.7.2", Font: "solid", Background: "0"}, SelectionFromURL(q))
}

func TestParseDimension(t *testing.T) {
	t.Parallel()

	d, ok := ParseDimension(" BG ")
	require.True(t, ok)
	require.Equal(t, DimensionBackground, d)

	_, ok = ParseDimension("size")
	require.False(t, ok)
}

func TestFlatVariantsFilterAsFonts(t *testing.T) {
	t.Parallel()

	doc := `
- version: "6.7.2"
  variant: solid
  variant_name: Solid
  color_id: white
  has_background: true
- version: "6.7.2"
  variant: duotone
  variant_name: Duotone
  color_id: white
  has_background: false
- version: "6.5.0"
  variant: solid
  color_id: red
  has_background: true
`
	cat, err := catalog.Decode([]byte(doc), catalog.FormatYAML)
	require.NoError(t, err)

	c := NewController(cat)
	require.Equal(t, []string{"solid", "duotone"}, values(c.Options().Font))
	require.Equal(t, []string{"white"}, values(c.Options().Color))

	tests := []struct {
		name    string
		query   url.Values
		visible []string
	}{
		{name: "solid", query: url.Values{"font": {"solid"}}, visible: []string{"solid-white"}},
		{name: "duotone transparent", query: url.Values{"font": {"duotone"}, "bg": {"0"}}, visible: []string{"duotone-white"}},
		{name: "older version", query: url.Values{"version": {"6.5.0"}, "font": {"solid"}}, visible: []string{"solid-red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewController(cat)
			require.Empty(t, c.SyncFromURL(tt.query))

			var got []string
			for _, item := range c.VisibleItems() {
				got = append(got, item.PackID())
			}
			require.Equal(t, tt.visible, got)
		})
	}
}

func values(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}
