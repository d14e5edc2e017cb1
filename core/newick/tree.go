// Package newick models guide trees over a sequence set and reads/writes
// them in Newick notation.
//
// Leaves are labelled with the zero-based index of the sequence they stand
// for, which is how alignment tools name sequences written as records "0",
// "1", ... in their input.
package newick

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Node is a tree node. Leaves have Index >= 0 and no children; internal
// nodes have Index == -1.
type Node struct {
	Index     int
	Length    float64
	HasLength bool
	Children  []*Node
}

// Leaf returns a leaf node for sequence index i.
func Leaf(i int) *Node { return &Node{Index: i} }

// Internal returns an internal node joining children.
func Internal(children ...*Node) *Node { return &Node{Index: -1, Children: children} }

// WithLength sets the branch length leading to n and returns n.
func (n *Node) WithLength(l float64) *Node {
	n.Length, n.HasLength = l, true
	return n
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a rooted guide tree.
type Tree struct {
	Root *Node
}

// New checks that root forms a valid tree (non-negative, unique leaf
// indices; internal nodes have children) and wraps it.
func New(root *Node) (*Tree, error) {
	if root == nil {
		return nil, errors.New("newick: nil root")
	}
	seen := map[int]bool{}
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.IsLeaf() {
			if n.Index < 0 {
				return errors.New("newick: leaf without sequence index")
			}
			if seen[n.Index] {
				return fmt.Errorf("newick: duplicate leaf index %d", n.Index)
			}
			seen[n.Index] = true
			return nil
		}
		for _, c := range n.Children {
			if c == nil {
				return errors.New("newick: nil child")
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return &Tree{Root: root}, nil
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return len(t.Leaves()) }

// Leaves returns leaf indices in traversal (left-to-right) order.
func (t *Tree) Leaves() []int {
	var out []int
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n.Index)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t != nil && t.Root != nil {
		walk(t.Root)
	}
	return out
}

// String renders t as single-line Newick text terminated by ';'.
func (t *Tree) String() string {
	var b strings.Builder
	writeNode(&b, t.Root)
	b.WriteByte(';')
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n.IsLeaf() {
		b.WriteString(strconv.Itoa(n.Index))
	} else {
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNode(b, c)
		}
		b.WriteByte(')')
	}
	if n.HasLength {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(n.Length, 'f', -1, 64))
	}
}
