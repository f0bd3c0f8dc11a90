package gallery

import (
	"fmt"
	"strings"

	gallerysvc "finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/gallery/filter"
	"finitefield.org/iconpack-gallery/internal/templates/helpers"
)

// PageData represents the payload for the full gallery page.
type PageData struct {
	Title       string
	Environment string
	IntroHTML   string
	View        ViewData
}

// ViewData is the part of the page swapped by htmx: filters, count and cards.
type ViewData struct {
	PageEndpoint     string
	FragmentEndpoint string
	Filters          []FilterGroup
	CountLabel       string
	Markup           string
	Notices          []string
	Empty            bool
}

// FilterGroup is one <select> of the filter bar.
type FilterGroup struct {
	Name    string
	Label   string
	Options []SelectOption
}

// SelectOption represents a select menu option.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// UnavailableData is shown while the gallery is loading or after it failed to load.
type UnavailableData struct {
	Title   string
	Message string
	Loading bool
}

var dimensionLabels = map[filter.Dimension]struct{ label, all string }{
	filter.DimensionVersion:    {label: "Version"},
	filter.DimensionFont:       {label: "Font", all: "All Fonts"},
	filter.DimensionColor:      {label: "Color", all: "All Colors"},
	filter.DimensionBackground: {label: "Background", all: "All Backgrounds"},
}

// BuildPageData assembles the page payload.
func BuildPageData(title, environment, intro, pageEndpoint, fragmentEndpoint string, view gallerysvc.View) PageData {
	return PageData{
		Title:       title,
		Environment: environment,
		IntroHTML:   intro,
		View:        BuildViewData(pageEndpoint, fragmentEndpoint, view),
	}
}

// BuildViewData maps a resolved gallery view onto the filter bar and card grid.
func BuildViewData(pageEndpoint, fragmentEndpoint string, view gallerysvc.View) ViewData {
	data := ViewData{
		PageEndpoint:     pageEndpoint,
		FragmentEndpoint: fragmentEndpoint,
		CountLabel:       helpers.CountOf(len(view.Items), view.Total, "pack", "packs"),
		Markup:           view.Markup,
		Empty:            len(view.Items) == 0,
	}

	for _, d := range filter.Dimensions {
		labels := dimensionLabels[d]
		current := view.Selection.Get(d)
		group := FilterGroup{Name: string(d), Label: labels.label}
		if d != filter.DimensionVersion {
			group.Options = append(group.Options, SelectOption{
				Value:    filter.All,
				Label:    labels.all,
				Selected: filter.Unconstrained(current),
			})
		}
		for _, opt := range view.Options.For(d) {
			group.Options = append(group.Options, SelectOption{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: opt.Value == current,
			})
		}
		data.Filters = append(data.Filters, group)
	}

	for _, reset := range view.Resets {
		data.Notices = append(data.Notices, resetNotice(reset, view.Selection.Version))
	}
	return data
}

func resetNotice(reset filter.Reset, version string) string {
	if reset.Dimension == filter.DimensionVersion {
		return fmt.Sprintf("Version %q does not exist; showing %s.", reset.Value, version)
	}
	labels := dimensionLabels[reset.Dimension]
	return fmt.Sprintf("%s %q is not available in %s; showing %s.", labels.label, reset.Value, version, strings.ToLower(labels.all))
}
