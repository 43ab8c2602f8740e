package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDocument marks input that is valid text but not a serialized tree.
var ErrNotDocument = errors.New("document: input is not a document")

var knownKeys = map[string]struct{}{
	"type": {}, "attrs": {}, "content": {}, "text": {}, "marks": {},
}

// UnmarshalJSON decodes a node, keeping unknown members in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if _, ok := knownKeys[key]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		if decoded.Extra == nil {
			decoded.Extra = make(map[string]any)
		}
		decoded.Extra[key] = v
	}

	*n = Node(decoded)
	return nil
}

// MarshalJSON encodes a node, merging Extra members back in.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	encoded, err := json.Marshal(plain(n))
	if err != nil {
		return nil, err
	}
	if len(n.Extra) == 0 {
		return encoded, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, err
	}
	for key, value := range n.Extra {
		if _, ok := knownKeys[key]; ok {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// Parse decodes a serialized document. Input that is not a JSON object with a
// non-empty type is reported with ErrNotDocument.
func Parse(raw string) (*Node, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotDocument
	}

	var node Node
	if err := json.Unmarshal([]byte(trimmed), &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocument, err)
	}
	if strings.TrimSpace(node.Type) == "" {
		return nil, fmt.Errorf("%w: missing node type", ErrNotDocument)
	}
	return &node, nil
}

// MustParse panics when raw cannot be parsed. Useful for tests.
func MustParse(raw string) *Node {
	node, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return node
}

// Marshal serializes a node tree to its JSON string form.
func Marshal(n *Node) (string, error) {
	if n == nil {
		return "", errors.New("document: node is nil")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("document: marshal: %w", err)
	}
	return string(data), nil
}
