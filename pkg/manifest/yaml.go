package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func parseYAML(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Manifest{}, nil
	}

	root, err := fromYAMLNode(doc.Content[0])
	if err != nil {
		return nil, err
	}

	fields, ok := root.([]field)
	if !ok {
		return nil, errors.Newf(errors.ErrManifestInvalid, "manifest root must be a mapping, got %T", root)
	}
	return fromFields(fields)
}

// fromYAMLNode converts a node tree, keeping mapping keys in document order
func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		fields := make([]field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := fromYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field{key: keyNode.Value, value: value})
		}
		return fields, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			value, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case uint64:
			return int64(t), nil
		default:
			return t, nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}
