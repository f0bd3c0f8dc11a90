package filter

import (
	"net/url"
	"strings"
)

// SelectionFromURL reads the raw selection from query parameters. Absent
// parameters yield empty values, which mean "unconstrained".
func SelectionFromURL(query url.Values) Selection {
	var sel Selection
	for _, d := range Dimensions {
		sel.Set(d, strings.TrimSpace(query.Get(string(d))))
	}
	return sel
}

// SelectionToURL writes sel into a copy of current. Unconstrained dimensions
// are removed. A dimension whose option list is empty keeps whatever current
// already holds for it. Unrelated parameters are preserved.
func SelectionToURL(sel Selection, opts Options, current url.Values) url.Values {
	out := make(url.Values, len(current)+len(Dimensions))
	for k, v := range current {
		out[k] = append([]string(nil), v...)
	}
	for _, d := range Dimensions {
		if len(opts.For(d)) == 0 {
			continue
		}
		value := sel.Get(d)
		if Unconstrained(value) {
			out.Del(string(d))
			continue
		}
		out.Set(string(d), value)
	}
	return out
}

// SyncFromURL applies the selection carried by query.
func (c *Controller) SyncFromURL(query url.Values) []Reset {
	return c.Apply(SelectionFromURL(query))
}

// SyncToURL mirrors the current selection onto current.
func (c *Controller) SyncToURL(current url.Values) url.Values {
	return SelectionToURL(c.sel, c.options, current)
}
