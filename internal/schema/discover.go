package schema

// Directive discovery walks the tree breadth-first so that when the same
// directive kind is declared at multiple depths, the shallowest declaration
// wins and deeper ones are ignored.

type queueEntry struct {
	id         NodeID
	schemaPath string
	dataPath   string
	field      string
	depth      int
}

// Directives returns every directive declared in the schema, shallowest-first.
// At most one directive per kind is returned; duplicate declarations at a
// greater depth are dropped.
func (t *Tree) Directives() ([]Directive, error) {
	var out []Directive
	seen := make(map[Kind]bool, kindCount)
	visited := make(map[NodeID]bool, len(t.nodes))

	queue := []queueEntry{{id: t.root}}
	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if entry.depth > maxDepth || visited[entry.id] {
			continue
		}
		visited[entry.id] = true

		n := &t.nodes[entry.id]
		// Fixed kind order keeps discovery deterministic when one node
		// declares several directives.
		for k := Kind(0); k < kindCount; k++ {
			raw, ok := n.annotations[kindKeys[k]]
			if !ok || seen[k] {
				continue
			}
			d, err := parseDirective(k, raw, entry.schemaPath, entry.dataPath, entry.field)
			if err != nil {
				return nil, err
			}
			if d == nil {
				continue
			}
			seen[k] = true
			out = append(out, *d)
		}

		for _, name := range n.childNames {
			queue = append(queue, queueEntry{
				id:         n.children[name],
				schemaPath: joinPath(entry.schemaPath, "properties."+name),
				dataPath:   joinPath(entry.dataPath, name),
				field:      name,
				depth:      entry.depth + 1,
			})
		}
		if n.items != noNode {
			queue = append(queue, queueEntry{
				id:         n.items,
				schemaPath: joinPath(entry.schemaPath, "items"),
				dataPath:   entry.dataPath,
				field:      entry.field,
				depth:      entry.depth + 1,
			})
		}
	}

	return out, nil
}

// DetectedKinds returns the set of directive kinds present anywhere in the
// schema, in declaration order of Kind.
func (t *Tree) DetectedKinds() ([]Kind, error) {
	directives, err := t.Directives()
	if err != nil {
		return nil, err
	}
	present := make(map[Kind]bool, len(directives))
	for _, d := range directives {
		present[d.Kind] = true
	}
	var kinds []Kind
	for k := Kind(0); k < kindCount; k++ {
		if present[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// DirectiveFor returns the discovered directive of the given kind, if any.
func (t *Tree) DirectiveFor(kind Kind) (*Directive, error) {
	directives, err := t.Directives()
	if err != nil {
		return nil, err
	}
	for i := range directives {
		if directives[i].Kind == kind {
			return &directives[i], nil
		}
	}
	return nil, nil
}

func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "." + segment
}
