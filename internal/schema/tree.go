package schema

import (
	"sort"
	"strings"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// NodeType tags a schema node as object, array, or primitive.
type NodeType int

const (
	TypePrimitive NodeType = iota
	TypeObject
	TypeArray
)

// NodeID addresses a node inside the tree's arena.
type NodeID int

const noNode NodeID = -1

// node is one schema node. Nodes live in an arena and reference each other by
// index so shared sub-schemas (after external $ref resolution) are represented once.
type node struct {
	typ         NodeType
	childNames  []string // deterministic child iteration order
	children    map[string]NodeID
	items       NodeID
	annotations map[string]any // raw x-* keys declared on this node
	def         any            // schema-declared default, nil if none
}

// Tree is a parsed, directive-annotated schema. Immutable once parsed;
// owned exclusively by the pipeline run that loaded it.
type Tree struct {
	nodes []node
	root  NodeID
}

// maxDepth caps schema recursion so self-referential schemas cannot loop forever.
const maxDepth = 64

// Parse builds a Tree from a generic JSON-like schema value (already loaded
// from JSON or YAML by the caller).
func Parse(raw map[string]any) (*Tree, error) {
	t := &Tree{}
	root, err := t.build(raw, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *Tree) build(raw map[string]any, depth int) (NodeID, error) {
	if depth > maxDepth {
		return noNode, fferrors.InvalidFormatError("schema nesting exceeds maximum depth").
			WithContext("max_depth", maxDepth).
			Build()
	}

	n := node{items: noNode}

	for key, value := range raw {
		if strings.HasPrefix(key, "x-") {
			if n.annotations == nil {
				n.annotations = make(map[string]any)
			}
			n.annotations[key] = value
		}
	}

	if def, ok := raw["default"]; ok {
		n.def = def
	}

	switch typ, _ := raw["type"].(string); typ {
	case "object":
		n.typ = TypeObject
	case "array":
		n.typ = TypeArray
	default:
		// Infer from structure when type is omitted.
		if _, ok := raw["properties"]; ok {
			n.typ = TypeObject
		} else if _, ok := raw["items"]; ok {
			n.typ = TypeArray
		} else {
			n.typ = TypePrimitive
		}
	}

	// Reserve this node's slot before descending so child IDs land after it.
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)

	if props, ok := raw["properties"].(map[string]any); ok {
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)

		children := make(map[string]NodeID, len(names))
		for _, name := range names {
			child, ok := props[name].(map[string]any)
			if !ok {
				return noNode, fferrors.InvalidFormatError("schema property is not an object").
					WithContext("property", name).
					Build()
			}
			childID, err := t.build(child, depth+1)
			if err != nil {
				return noNode, err
			}
			children[name] = childID
		}
		t.nodes[id].childNames = names
		t.nodes[id].children = children
	}

	if items, ok := raw["items"].(map[string]any); ok {
		itemID, err := t.build(items, depth+1)
		if err != nil {
			return noNode, err
		}
		t.nodes[id].items = itemID
	}

	return id, nil
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Defaults collects schema-declared default values into a nested map keyed by
// property name, for seeding documents with sparse front matter.
func (t *Tree) Defaults() map[string]any {
	return t.defaultsAt(t.root)
}

func (t *Tree) defaultsAt(id NodeID) map[string]any {
	n := &t.nodes[id]
	out := make(map[string]any)
	for _, name := range n.childNames {
		child := &t.nodes[n.children[name]]
		if child.def != nil {
			out[name] = child.def
			continue
		}
		if child.typ == TypeObject {
			if nested := t.defaultsAt(n.children[name]); len(nested) > 0 {
				out[name] = nested
			}
		}
	}
	return out
}
