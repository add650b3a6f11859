package fsindex

import (
	"path"
	"sort"
	"strings"
)

// BuildFromKeys arranges flat object keys under prefix into a tree using the
// same classification and pruning as Index. location maps a key (or a
// directory key ending in "/") to the path stored on the node.
func BuildFromKeys(rootName, prefix string, keys []string, location func(string) string) *Node {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	root := &Node{Kind: KindDirectory, Name: rootName, Path: location(prefix)}
	dirs := map[string]*Node{"": root}

	var ensure func(dir string) *Node
	ensure = func(dir string) *Node {
		if node, ok := dirs[dir]; ok {
			return node
		}
		parentDir := path.Dir(dir)
		if parentDir == "." {
			parentDir = ""
		}
		parent := ensure(parentDir)
		node := &Node{Kind: KindDirectory, Name: path.Base(dir), Path: location(prefix + dir + "/")}
		parent.Children = append(parent.Children, node)
		dirs[dir] = node
		return node
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rel := key[len(prefix):]
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		name := path.Base(rel)
		kind := Classify(name, false)
		if kind == KindIgnored {
			continue
		}
		dir := path.Dir(rel)
		if dir == "." {
			dir = ""
		}
		parent := ensure(dir)
		parent.Children = append(parent.Children, &Node{Kind: kind, Name: name, Path: location(key)})
	}

	sortTree(root)
	return root
}

func sortTree(node *Node) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		sortTree(child)
	}
}
