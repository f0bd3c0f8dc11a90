package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
)

// Option is one selectable value of a dimension.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options holds the option list of every dimension. Lists never contain the
// "all" value; callers present it separately.
type Options struct {
	Version    []Option `json:"version"`
	Font       []Option `json:"font"`
	Color      []Option `json:"color"`
	Background []Option `json:"bg"`
}

// For returns the option list of d.
func (o Options) For(d Dimension) []Option {
	switch d {
	case DimensionVersion:
		return o.Version
	case DimensionFont:
		return o.Font
	case DimensionColor:
		return o.Color
	case DimensionBackground:
		return o.Background
	default:
		return nil
	}
}

// Has reports whether d currently offers value.
func (o Options) Has(d Dimension, value string) bool {
	for _, opt := range o.For(d) {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// BackgroundOptions is the fixed option list of the background dimension.
func BackgroundOptions() []Option {
	return []Option{
		{Value: BackgroundWith, Label: "With Background"},
		{Value: BackgroundWithout, Label: "Without Background"},
	}
}

// InitFilters derives option lists from the catalog. Font and colour lists
// depend on version and must be derived again whenever it changes; an unknown
// version yields empty font and colour lists.
func InitFilters(cat *catalog.Catalog, version string) Options {
	opts := Options{Background: BackgroundOptions()}
	if cat == nil {
		return opts
	}
	for _, name := range cat.VersionNames() {
		opts.Version = append(opts.Version, Option{Value: name, Label: name})
	}

	v, ok := cat.Version(version)
	if !ok {
		return opts
	}
	if v.Sets != nil {
		opts.Font = entryOptions(v.Sets.Fonts)
		opts.Color = entryOptions(v.Sets.Colors)
		return opts
	}

	fonts := newOptionSet()
	colors := newOptionSet()
	for _, item := range v.Items {
		fonts.add(item.FontID, item.FontName)
		colors.add(item.ColorID, item.ColorName)
	}
	opts.Font = fonts.options
	opts.Color = colors.options
	return opts
}

func entryOptions(entries []catalog.Entry) []Option {
	set := newOptionSet()
	for _, e := range entries {
		set.add(e.ID, e.Name)
	}
	return set.options
}

// optionSet collects distinct ids in first-seen order. The first non-empty
// name seen for an id becomes its label.
type optionSet struct {
	options []Option
	index   map[string]int
	named   map[string]bool
}

func newOptionSet() *optionSet {
	return &optionSet{index: make(map[string]int), named: make(map[string]bool)}
}

func (s *optionSet) add(id, name string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	name = strings.TrimSpace(name)
	pos, ok := s.index[id]
	if !ok {
		s.index[id] = len(s.options)
		s.options = append(s.options, Option{Value: id, Label: labelFor(id, name)})
		s.named[id] = name != ""
		return
	}
	if !s.named[id] && name != "" {
		s.options[pos].Label = name
		s.named[id] = true
	}
}

func labelFor(id, name string) string {
	if name != "" {
		return name
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(id)
	return cases.Title(language.Und).String(words)
}
