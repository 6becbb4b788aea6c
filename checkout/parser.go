package checkout

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned when the notification body is not well-formed
// XML. Such a body will never parse on redelivery either, so the boundary
// must reject it without acknowledgment.
var ErrMalformed = errors.New("malformed document")

// parseDocument converts raw XML into a tree rooted at the document
// element and returns the raw root element name alongside it.
func parseDocument(data []byte) (*Node, string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, "", fmt.Errorf("no document element: %w", ErrMalformed)
		}
		if err != nil {
			return nil, "", fmt.Errorf("%v: %w", err, ErrMalformed)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		root, err := parseElement(decoder, start)
		if err != nil {
			return nil, "", fmt.Errorf("%v: %w", err, ErrMalformed)
		}
		return root, start.Name.Local, nil
	}
}

// parseElement recursively converts one element. Text-only elements become
// leaf values; elements with children keep their attributes merged into
// the child namespace under normalized keys.
//
// A container whose XML children all carry one repeated tag (two or more
// siblings, nothing else) is marked as a pure list; its parent binds the
// ordered child sequence directly under the container's key. That removes
// one nesting level for list shapes like a shopping cart's items. The
// decision looks at the element's actual XML children, so a container
// that merely holds an already-collapsed list does not collapse again.
func parseElement(decoder *xml.Decoder, start xml.StartElement) (*Node, error) {
	node := &Node{
		name:     start.Name.Local,
		children: make(map[string][]*Node),
	}
	var text strings.Builder
	var childNames []string
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			child, err := parseElement(decoder, t)
			if err != nil {
				return nil, err
			}
			node.addChild(t.Name.Local, child)
			childNames = append(childNames, t.Name.Local)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(node.children) == 0 {
				// leaf element; attributes of leaves are not part of
				// the wire contract and are dropped with the element
				node.text = strings.TrimSpace(text.String())
				node.children = nil
				return node, nil
			}
			node.list = len(childNames) > 1 && allSame(childNames) && len(node.children) == 1
			if !node.list {
				for _, attr := range start.Attr {
					if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
						continue
					}
					node.children[normalizeKey(attr.Name.Local)] = []*Node{{
						name: attr.Name.Local,
						text: attr.Value,
					}}
				}
			}
			return node, nil
		}
	}
}

// addChild binds a converted child under its normalized key, appending on
// repeated sibling names. A pure list container dissolves into its parent.
func (n *Node) addChild(rawName string, child *Node) {
	key := normalizeKey(rawName)
	if child.list {
		repeated, _ := child.repeatedChildren()
		n.children[key] = append(n.children[key], repeated...)
		return
	}
	n.children[key] = append(n.children[key], child)
}

func allSame(names []string) bool {
	for _, name := range names {
		if name != names[0] {
			return false
		}
	}
	return true
}
