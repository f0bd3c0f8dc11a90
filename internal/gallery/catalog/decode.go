package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialisation of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromLocation guesses the document format from a path or URL extension.
// Unknown extensions are treated as JSON.
func FormatFromLocation(location string) Format {
	location = strings.TrimSpace(location)
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type rawItem struct {
	Version       string `yaml:"version"`
	FontID        string `yaml:"font_id"`
	FontName      string `yaml:"font_name"`
	ColorID       string `yaml:"color_id"`
	ColorName     string `yaml:"color_name"`
	Variant       string `yaml:"variant"`
	VariantName   string `yaml:"variant_name"`
	Background    *bool  `yaml:"background"`
	HasBackground *bool  `yaml:"has_background"`
	Transparent   *bool  `yaml:"transparent"`
}

// item maps a record onto the filter dimensions. A variant stands in for the
// font when the record carries no font_id.
func (r rawItem) item(version string, attrs map[string]any) Item {
	return Item{
		Version:     version,
		FontID:      firstNonEmpty(r.FontID, r.Variant),
		FontName:    firstNonEmpty(r.FontName, r.VariantName),
		ColorID:     r.ColorID,
		ColorName:   r.ColorName,
		Variant:     r.Variant,
		Transparent: r.transparent(),
		Attributes:  attrs,
	}
}

func (r rawItem) transparent() bool {
	switch {
	case r.Transparent != nil:
		return *r.Transparent
	case r.Background != nil:
		return !*r.Background
	case r.HasBackground != nil:
		return !*r.HasBackground
	default:
		return false
	}
}

// Decode parses a catalog document in the given format. Both formats keep
// mapping keys in document order.
func Decode(data []byte, format Format) (*Catalog, error) {
	var (
		root *yaml.Node
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		root, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch root.Kind {
	case yaml.SequenceNode:
		return decodeFlat(root)
	case yaml.MappingNode:
		return decodeVersioned(root)
	default:
		return nil, fmt.Errorf("%w: top level must be a mapping or a sequence", ErrMalformed)
	}
}

func parseYAML(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, errors.New("empty document")
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return nil, errors.New("empty document")
	}
	return deref(root), nil
}

// parseJSON walks the token stream into a yaml.Node tree so both formats
// share one decoder and object keys keep their order.
func parseJSON(data []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := jsonValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return root, nil
}

func jsonValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				value, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, stringNode(key), value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				value, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		default:
			return nil, fmt.Errorf("unexpected %q", rune(v))
		}
	case string:
		return stringNode(v), nil
	case json.Number:
		tag := "!!float"
		if _, err := v.Int64(); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: value}
}

func decodeVersioned(root *yaml.Node) (*Catalog, error) {
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: no versions", ErrMalformed)
	}

	cat := &Catalog{}
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := strings.TrimSpace(root.Content[i].Value)
		value := deref(root.Content[i+1])
		if name == "" {
			return nil, fmt.Errorf("%w: empty version name", ErrMalformed)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: version %q defined twice", ErrMalformed, name)
		}
		seen[name] = struct{}{}

		var shape Shape
		version := Version{Name: name}
		switch value.Kind {
		case yaml.SequenceNode:
			shape = ShapeVersionItems
			items, err := decodeItems(value, name)
			if err != nil {
				return nil, err
			}
			version.Items = items
		case yaml.MappingNode:
			shape = ShapeVersionSets
			sets, err := decodeSets(value, name)
			if err != nil {
				return nil, err
			}
			version.Sets = sets
		default:
			return nil, fmt.Errorf("%w: version %q must be a list of items or a fonts/colors mapping", ErrMalformed, name)
		}

		if cat.Shape == 0 {
			cat.Shape = shape
		} else if cat.Shape != shape {
			return nil, fmt.Errorf("%w: version %q mixes %s with %s", ErrMalformed, name, shape, cat.Shape)
		}
		cat.Versions = append(cat.Versions, version)
	}
	return cat, nil
}

func decodeItems(seq *yaml.Node, version string) ([]Item, error) {
	items := make([]Item, 0, len(seq.Content))
	for idx, node := range seq.Content {
		raw, attrs, err := decodeRecord(node)
		if err != nil {
			return nil, fmt.Errorf("%w: version %q item %d: %v", ErrMalformed, version, idx, err)
		}
		items = append(items, raw.item(version, attrs))
	}
	return items, nil
}

func decodeSets(node *yaml.Node, version string) (*Sets, error) {
	var fonts, colors *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "fonts":
			fonts = deref(node.Content[i+1])
		case "colors":
			colors = deref(node.Content[i+1])
		}
	}
	if fonts == nil || colors == nil {
		return nil, fmt.Errorf("%w: version %q needs both fonts and colors", ErrMalformed, version)
	}

	fontEntries, err := decodeEntries(fonts)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q fonts: %v", ErrMalformed, version, err)
	}
	colorEntries, err := decodeEntries(colors)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q colors: %v", ErrMalformed, version, err)
	}
	return &Sets{Fonts: fontEntries, Colors: colorEntries}, nil
}

func decodeEntries(node *yaml.Node) ([]Entry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected an id to name mapping")
	}
	entries := make([]Entry, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := strings.TrimSpace(node.Content[i].Value)
		value := deref(node.Content[i+1])
		if id == "" {
			return nil, fmt.Errorf("empty id")
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("id %q defined twice", id)
		}
		seen[id] = struct{}{}
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("name of %q must be a string", id)
		}
		entries = append(entries, Entry{ID: id, Name: value.Value})
	}
	return entries, nil
}

func decodeFlat(seq *yaml.Node) (*Catalog, error) {
	if len(seq.Content) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrMalformed)
	}

	cat := &Catalog{Shape: ShapeFlat}
	index := make(map[string]int)
	for idx, node := range seq.Content {
		raw, attrs, err := decodeRecord(node)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformed, idx, err)
		}
		version := strings.TrimSpace(raw.Version)
		if version == "" {
			return nil, fmt.Errorf("%w: item %d has no version", ErrMalformed, idx)
		}
		pos, ok := index[version]
		if !ok {
			pos = len(cat.Versions)
			index[version] = pos
			cat.Versions = append(cat.Versions, Version{Name: version})
		}
		cat.Versions[pos].Items = append(cat.Versions[pos].Items, raw.item(version, attrs))
	}
	return cat, nil
}

func decodeRecord(node *yaml.Node) (rawItem, map[string]any, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return rawItem{}, nil, fmt.Errorf("expected a record")
	}
	var raw rawItem
	if err := node.Decode(&raw); err != nil {
		return rawItem{}, nil, err
	}
	attrs := make(map[string]any)
	if err := node.Decode(&attrs); err != nil {
		return rawItem{}, nil, err
	}
	return raw, attrs, nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
