package tree

import "fmt"

// PathOf returns the sequence of child indices leading from the root to n.
// The root's path is empty.
func (t *Tree) PathOf(n *Node) []int {
	var rev []int
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		rev = append(rev, cur.Parent.childIndex(cur))
	}
	path := make([]int, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

// NodeAt resolves a child-index path from the root, the inverse of PathOf.
func (t *Tree) NodeAt(path []int) (*Node, error) {
	cur := t.root
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			return nil, fmt.Errorf("path index %d out of range at %q", idx, cur.Move)
		}
		cur = cur.Children[idx]
	}
	return cur, nil
}

// MainLine returns the principal line: the root followed by the chain of
// MainLine links until a node has none. This is "the game" for linear display.
func (t *Tree) MainLine() []*Node {
	var seq []*Node
	for n := t.root; n != nil; n = n.MainLine {
		seq = append(seq, n)
	}
	return seq
}

// ToStart moves the cursor to the root.
func (t *Tree) ToStart() *Node {
	t.setCursor(t.root)
	return t.current
}

// Back moves the cursor to its parent. No-op at the root.
func (t *Tree) Back() *Node {
	if t.current.Parent != nil {
		t.setCursor(t.current.Parent)
	}
	return t.current
}

// Forward advances the cursor along the mainline, falling back to the first
// child when no mainline is set. No-op at a leaf.
func (t *Tree) Forward() *Node {
	switch {
	case t.current.MainLine != nil:
		t.setCursor(t.current.MainLine)
	case len(t.current.Children) > 0:
		t.setCursor(t.current.Children[0])
	}
	return t.current
}

// ToEnd moves the cursor to the last node of the mainline.
func (t *Tree) ToEnd() *Node {
	seq := t.MainLine()
	t.setCursor(seq[len(seq)-1])
	return t.current
}

// ToNode jumps the cursor to a node that must belong to this tree.
func (t *Tree) ToNode(n *Node) error {
	live, ok := t.nodes[n.ID]
	if !ok || live != n {
		return fmt.Errorf("node %s is not part of this tree", n.ID)
	}
	t.setCursor(n)
	return nil
}
