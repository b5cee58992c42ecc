package taxonomy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// member and object keep document key order, which plain maps lose.
type member struct {
	key   string
	value any
}

type object []member

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after taxonomy document")
	}
	return value, nil
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		obj := make(object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: n.Content[i].Value, value: value})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			value, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// buildTree converts a decoded document into a Tree. Nodes of the wrong shape
// become empty nodes; a repeated key keeps its first position and value.
func buildTree(root any) *Tree {
	tree := &Tree{}
	categories, _ := root.(object)
	for _, c := range unique(categories) {
		category := Category{Name: c.key}
		subs, _ := c.value.(object)
		for _, s := range unique(subs) {
			category.SubCategories = append(category.SubCategories, buildSubCategory(s.key, s.value))
		}
		tree.Categories = append(tree.Categories, category)
	}
	return tree
}

func buildSubCategory(name string, raw any) SubCategory {
	sub := SubCategory{Name: name}
	node, _ := raw.(object)
	for _, field := range node {
		switch field.key {
		case "metadata":
			if bag, ok := field.value.(object); ok && len(bag) > 0 {
				sub.Metadata, _ = plain(bag).(map[string]any)
			}
		case "items":
			items, _ := field.value.(object)
			for _, item := range unique(items) {
				sub.Items = append(sub.Items, buildLeaf(item.key, item.value))
			}
		}
	}
	return sub
}

func buildLeaf(name string, raw any) Leaf {
	leaf := Leaf{Name: name}
	node, _ := raw.(object)
	for _, field := range node {
		switch field.key {
		case "tags":
			values, _ := field.value.([]any)
			for _, v := range values {
				if tag, ok := v.(string); ok {
					leaf.Tags = append(leaf.Tags, tag)
				}
			}
		case "available_audience":
			leaf.AvailableAudience = audience(field.value)
		}
	}
	return leaf
}

func unique(obj object) object {
	out := make(object, 0, len(obj))
	seen := make(map[string]struct{}, len(obj))
	for _, m := range obj {
		if _, ok := seen[m.key]; ok {
			continue
		}
		seen[m.key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// audience coerces a decoded count; anything missing, negative, or non-numeric is 0.
func audience(v any) int64 {
	var n int64
	switch value := v.(type) {
	case json.Number:
		if i, err := value.Int64(); err == nil {
			n = i
		} else if f, err := value.Float64(); err == nil && f < math.MaxInt64 {
			n = int64(f)
		}
	case int:
		n = int64(value)
	case int64:
		n = value
	case uint64:
		if value < math.MaxInt64 {
			n = int64(value)
		}
	case float64:
		if value < math.MaxInt64 {
			n = int64(value)
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// plain turns ordered nodes back into ordinary Go values for opaque metadata.
func plain(v any) any {
	switch value := v.(type) {
	case object:
		out := make(map[string]any, len(value))
		for _, m := range value {
			if _, ok := out[m.key]; !ok {
				out[m.key] = plain(m.value)
			}
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = plain(item)
		}
		return out
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		f, _ := value.Float64()
		return f
	case int:
		return int64(value)
	default:
		return value
	}
}
