package model

import "fmt"

// NodeKind tags what a tree node stands for.
type NodeKind int

const (
	// NodeKindFile is an imported file.
	NodeKindFile NodeKind = iota
	// NodeKindSheet is a table materialized from a sheet.
	NodeKindSheet
	// NodeKindField is a column of a table.
	NodeKindField
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeKindFile:
		return "file"
	case NodeKindSheet:
		return "sheet"
	case NodeKindField:
		return "field"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	return k >= NodeKindFile && k <= NodeKindField
}

// Node is one entry of the catalog tree.
//
// Value is the payload inserted into SQL or used to locate the file:
// the file path for File nodes, the bracket-quoted table name for Sheet
// nodes and the double-quoted column name for Field nodes.
type Node struct {
	Kind     NodeKind
	Value    string
	Text     string
	Detail   string
	Expanded bool
	Parent   *Node
	Children []*Node
}

// SheetPayload returns the payload of a Sheet node for table name.
func SheetPayload(table string) string {
	return "[" + table + "]"
}

// FieldPayload returns the payload of a Field node for column name.
func FieldPayload(column string) string {
	return `"` + column + `"`
}

// NewFileNode creates the node of an imported file.
func NewFileNode(f *File) *Node {
	return &Node{
		Kind:     NodeKindFile,
		Value:    f.Path,
		Text:     f.Name,
		Detail:   f.Ext,
		Expanded: true,
	}
}

// NewSheetNode creates the node of a table together with one Field child per column.
func NewSheetNode(t *Table) *Node {
	n := &Node{
		Kind:  NodeKindSheet,
		Value: SheetPayload(t.Name),
		Text:  t.Name,
	}
	for _, c := range t.Columns {
		n.AddChild(&Node{
			Kind:   NodeKindField,
			Value:  FieldPayload(c.Name),
			Text:   c.Name,
			Detail: c.Type.String(),
		})
	}
	return n
}

// AddChild appends child to n and returns child.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// FileOf climbs from n to its File ancestor (n itself for File nodes).
// It returns nil when n is not below a File node.
func FileOf(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == NodeKindFile && cur.Parent != nil {
			return cur
		}
	}
	return nil
}

// Tree is the navigable mirror of the catalog. Its root is invisible and
// holds one child per imported file.
type Tree struct {
	root *Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{root: &Node{Kind: -1, Expanded: true}}
}

// Files returns the file nodes in import order.
func (t *Tree) Files() []*Node {
	return t.root.Children
}

// AddFile appends a file node at the top level.
func (t *Tree) AddFile(n *Node) *Node {
	return t.root.AddChild(n)
}

// Remove detaches n (and its subtree) from the tree.
func (t *Tree) Remove(n *Node) error {
	if n == nil || n.Parent == nil || !n.Parent.RemoveChild(n) {
		return ErrNodeNotInTree
	}
	return nil
}

// Walk visits every node depth-first in display order. Returning false from
// fn skips the children of that node.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.root.Children, 0)
}

// Visible returns the nodes a user sees, honouring the Expanded flags.
func (t *Tree) Visible() []*Node {
	var nodes []*Node
	t.Walk(func(n *Node, _ int) bool {
		nodes = append(nodes, n)
		return n.Expanded
	})
	return nodes
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	count := 0
	t.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}
