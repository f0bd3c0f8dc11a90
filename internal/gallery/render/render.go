// Package render turns filtered catalog items into gallery markup using the
// operator-supplied item template.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
)

// ErrMalformedTemplate reports an item template that cannot be parsed.
var ErrMalformedTemplate = errors.New("render: malformed template")

// Template is a parsed item template.
type Template struct {
	source   string
	compiled *mustache.Template
}

// ParseTemplate compiles a Mustache item template.
func ParseTemplate(text string) (*Template, error) {
	compiled, err := mustache.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	return &Template{source: text, compiled: compiled}, nil
}

// Source returns the template text.
func (t *Template) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Context is what a template sees for one item.
type Context struct {
	Version string
	Item    catalog.Item
}

// Data flattens the context into template variables: version, item, and font
// (an alias of item kept for templates written against the pack builder).
func (c Context) Data() map[string]any {
	fields := c.Item.Fields()
	return map[string]any{
		"version": c.Version,
		"item":    fields,
		"font":    fields,
	}
}

// Func renders one item. It must be pure.
type Func func(tpl *Template, ctx Context) (string, error)

// Mustache is the default Func.
func Mustache(tpl *Template, ctx Context) (string, error) {
	if tpl == nil || tpl.compiled == nil {
		return "", nil
	}
	return tpl.compiled.Render(ctx.Data())
}

// Renderer concatenates rendered items in order. Template output is trusted
// and emitted verbatim unless a policy is set.
type Renderer struct {
	fn     Func
	policy *bluemonday.Policy
	logger *zap.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithFunc swaps the template engine.
func WithFunc(fn Func) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.fn = fn
		}
	}
}

// WithLogger sets the logger used to report items that failed to render.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPolicy sanitises every rendered item with policy. A nil policy leaves
// the output untouched.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		r.policy = policy
	}
}

// NewRenderer constructs a Renderer backed by Mustache.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		fn:     Mustache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Segments renders every item, one segment per item, in the order given.
// Items the engine rejects produce an empty segment and are logged.
func (r *Renderer) Segments(tpl *Template, version string, items []catalog.Item) []string {
	segments := make([]string, 0, len(items))
	for idx, item := range items {
		out, err := r.fn(tpl, Context{Version: version, Item: item})
		if err != nil {
			r.logger.Warn("item render failed",
				zap.String("version", version),
				zap.String("pack_id", item.PackID()),
				zap.Int("index", idx),
				zap.Error(err),
			)
			out = ""
		}
		if r.policy != nil {
			out = r.policy.Sanitize(out)
		}
		segments = append(segments, out)
	}
	return segments
}

// Render returns the concatenated markup for items.
func (r *Renderer) Render(tpl *Template, version string, items []catalog.Item) string {
	return strings.Join(r.Segments(tpl, version, items), "")
}

// CardPolicy is a UGC policy widened for common card markup. Inline SVG,
// buttons and style attributes are not allowed.
func CardPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption", "article", "section", "header", "footer")
	policy.AllowAttrs("class", "title").Globally()
	policy.AllowDataAttributes()
	policy.AllowAttrs("loading", "decoding").OnElements("img")
	policy.AllowAttrs("download", "target").OnElements("a")
	return policy
}
