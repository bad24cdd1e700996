package tree

// NoOpReason signals that a structural mutation was requested on an
// ineligible node. It is a benign outcome, not a failure: the tree is
// untouched and the caller may surface the reason verbatim.
type NoOpReason string

const (
	// NoOpApplied means the mutation happened.
	NoOpApplied NoOpReason = ""
	// NoOpRoot means the operation targeted the undeletable, unpromotable root.
	NoOpRoot NoOpReason = "root node"
	// NoOpAlreadyMain means the node is already reachable from the root
	// purely via mainline links.
	NoOpAlreadyMain NoOpReason = "already on the mainline"
)

// Promote swaps the variation containing n into the mainline.
//
// It walks upward from n while each ancestor is its own parent's mainline
// child, stopping at the variation root: the first ancestor that branches off
// the principal continuation. Re-pointing that single MainLine link swaps the
// whole variation in; subtree contents are untouched. Structural-only: the
// oracle is never consulted and sibling subtrees stay valid.
func (t *Tree) Promote(n *Node) NoOpReason {
	if n.Parent == nil {
		return NoOpRoot
	}

	v := n
	for v.Parent != nil && v.Parent.MainLine == v {
		v = v.Parent
	}
	if v.Parent == nil {
		// Walked all the way up through mainline links: n was already main.
		return NoOpAlreadyMain
	}

	v.Parent.MainLine = v
	t.path = t.PathOf(t.current)
	return NoOpApplied
}

// DeleteSubtree removes n and everything below it. The root is undeletable.
//
// If n was its parent's mainline child the parent's MainLine is repaired to
// the first remaining child, or cleared when none remain. A cursor inside the
// deleted subtree moves up to the parent. Annotations on untouched nodes are
// preserved; in-flight evaluation results may still be written onto detached
// nodes, which is harmless since nothing reachable references them.
func (t *Tree) DeleteSubtree(n *Node) NoOpReason {
	parent := n.Parent
	if parent == nil {
		return NoOpRoot
	}

	idx := parent.childIndex(n)
	if idx < 0 {
		// Already detached; nothing to do.
		return NoOpApplied
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	if parent.MainLine == n {
		if len(parent.Children) > 0 {
			parent.MainLine = parent.Children[0]
		} else {
			parent.MainLine = nil
		}
	}

	t.forgetSubtree(n)
	n.Parent = nil

	if t.current.hasAncestor(n) {
		t.setCursor(parent)
	} else {
		t.path = t.PathOf(t.current)
	}
	return NoOpApplied
}

// forgetSubtree removes n and its descendants from the ID index. IDs are
// never reused, so a stale reference can never resolve to a new node.
func (t *Tree) forgetSubtree(n *Node) {
	delete(t.nodes, n.ID)
	for _, c := range n.Children {
		t.forgetSubtree(c)
	}
}
