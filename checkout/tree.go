package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested key is absent from a node.
// Handlers that want optional access should call Has first.
var ErrNotFound = errors.New("key not found")

// Node is one element of a parsed notification: a read-only mapping from
// normalized child name to a nested node, an ordered list of nodes for
// repeated siblings, or a leaf string value. Element attributes live in the
// same namespace as leaf children. Nodes are never modified after parsing
// and are owned by a single request.
//
// Known limitation: two raw names that normalize to the same key (such as
// foo-bar and foo_bar in one element) collide, and which value survives is
// undefined. The processor's wire format never mixes the two styles.
type Node struct {
	name     string
	text     string
	children map[string][]*Node

	// list marks a container whose XML children were one repeated tag;
	// the parser dissolves such a container into its parent.
	list bool
}

// normalizeKey maps a raw tag or attribute name to its lookup key,
// replacing every hyphen with an underscore. The mapping is idempotent.
func normalizeKey(raw string) string {
	return strings.ReplaceAll(raw, "-", "_")
}

// Name returns the raw element name this node was built from.
func (n *Node) Name() string {
	return n.name
}

// Value returns the leaf string of this node, empty for nested nodes.
func (n *Node) Value() string {
	return n.text
}

// Has reports whether the dotted path resolves to a value.
func (n *Node) Has(path string) bool {
	_, err := n.Get(path)
	return err == nil
}

// Get resolves a dotted path like "buyer_shipping_address.contact_name"
// through nested nodes and returns the node it ends at. Path segments may
// use the raw hyphenated spelling, normalization is applied per segment.
// When a segment names a repeated child, the first occurrence in document
// order is followed.
func (n *Node) Get(path string) (*Node, error) {
	current := n
	for _, segment := range strings.Split(path, ".") {
		nodes, ok := current.children[normalizeKey(segment)]
		if !ok || len(nodes) == 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		current = nodes[0]
	}
	return current, nil
}

// Text resolves a dotted path and returns the leaf string stored there.
func (n *Node) Text(path string) (string, error) {
	node, err := n.Get(path)
	if err != nil {
		return "", err
	}
	if len(node.children) > 0 {
		return "", fmt.Errorf("%s: element has nested content", path)
	}
	return node.text, nil
}

// List resolves a dotted path and returns the repeated children stored
// there in document order. A remaining single wrapper element holding one
// repeated tag is unwrapped, so a one-item shopping cart and a three-item
// one both come back as flat lists. An empty container yields an empty
// list.
func (n *Node) List(path string) ([]*Node, error) {
	parent := n
	key := normalizeKey(path)
	if i := strings.LastIndex(path, "."); i >= 0 {
		var err error
		parent, err = n.Get(path[:i])
		if err != nil {
			return nil, err
		}
		key = normalizeKey(path[i+1:])
	}
	nodes, ok := parent.children[key]
	if !ok || len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if len(nodes) > 1 {
		return nodes, nil
	}
	single := nodes[0]
	if repeated, onlyKey := single.repeatedChildren(); onlyKey {
		return repeated, nil
	}
	if len(single.children) == 0 && single.text == "" {
		return nil, nil
	}
	return nodes, nil
}

// repeatedChildren reports whether the node holds children under exactly
// one key, returning them when it does.
func (n *Node) repeatedChildren() ([]*Node, bool) {
	if len(n.children) != 1 {
		return nil, false
	}
	for _, nodes := range n.children {
		return nodes, true
	}
	return nil, false
}

// Keys returns the normalized child keys of this node. Order is not
// specified, it exists for diagnostics and tests.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.children))
	for key := range n.children {
		keys = append(keys, key)
	}
	return keys
}
