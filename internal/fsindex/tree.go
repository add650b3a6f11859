package fsindex

type Node struct {
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

func (n *Node) IsQuery() bool {
	return n.Kind == KindQuery
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// Files returns the leaves in depth-first order.
func (n *Node) Files() []*Node {
	if n == nil {
		return nil
	}
	if !n.IsDir() {
		return []*Node{n}
	}
	var out []*Node
	for _, child := range n.Children {
		out = append(out, child.Files()...)
	}
	return out
}
