package skill

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const kindKey = "kind"

// encodeKinded encodes v as a mapping and puts a leading `kind: <kind>` entry
// in front of its fields.
func encodeKinded(kind string, v any) (*yaml.Node, error) {
	var body yaml.Node
	if err := body.Encode(v); err != nil {
		return nil, err
	}
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	out.Content = append(out.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kindKey},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kind},
	)
	if body.Kind == yaml.MappingNode {
		out.Content = append(out.Content, body.Content...)
	}
	return out, nil
}

// nodeKind returns the `kind` value of a mapping node.
func nodeKind(node *yaml.Node) (string, error) {
	if node.Kind != yaml.MappingNode {
		return "", fmt.Errorf("skill: line %d: expected mapping, got %s", node.Line, node.ShortTag())
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == kindKey {
			return node.Content[i+1].Value, nil
		}
	}
	return "", fmt.Errorf("skill: line %d: %w", node.Line, ErrMissingKind)
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
