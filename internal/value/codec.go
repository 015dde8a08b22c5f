package value

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"
)

// A Value encodes as the matching JSON/YAML scalar, so snapshots and API
// bodies stay human readable.

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		if !v.IsFinite() {
			return nil, fmt.Errorf("value: cannot encode non-finite number %v", v.num)
		}
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.Any())
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Null()
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	if !v.IsFinite() {
		return nil, fmt.Errorf("value: cannot encode non-finite number %v", v.num)
	}
	return v.Any(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("value: line %d: expected a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*v = Null()
	case "!!str":
		*v = String(node.Value)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Number(f)
	default:
		return fmt.Errorf("value: line %d: unsupported tag %s", node.Line, node.ShortTag())
	}
	return nil
}
