package tree

import (
	"fmt"
)

// Rules is the position oracle consumed by the tree: given a FEN and a SAN
// move it returns the resulting FEN or rejects the move.
type Rules interface {
	StartingFEN() string
	ApplyMove(fen, san string) (string, error)
}

// Tree owns one rooted move tree plus its cursor. It is not safe for
// concurrent mutation; callers serialize access (see the session package).
type Tree struct {
	rules   Rules
	root    *Node
	nodes   map[string]*Node // lookup by ID; detached subtrees are removed
	current *Node
	path    []int // derived: child indices from root to current
}

// New creates a tree holding only a root node at the given position. An empty
// startFEN means the standard initial position.
func New(rules Rules, startFEN string) *Tree {
	if startFEN == "" {
		startFEN = rules.StartingFEN()
	}
	root := newNode(nil, "", startFEN)
	t := &Tree{
		rules:   rules,
		root:    root,
		nodes:   map[string]*Node{root.ID: root},
		current: root,
		path:    nil,
	}
	return t
}

// Build replays a linear move list from the starting position. Each applied
// move becomes the sole child of the previous node and therefore its
// mainline. On the first rejected move replay stops silently, leaving the
// cursor at the last successfully applied node.
func Build(rules Rules, startFEN string, moves []string) *Tree {
	t := New(rules, startFEN)
	for _, san := range moves {
		if _, err := t.AddMove(san); err != nil {
			break
		}
	}
	return t
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Current returns the cursor node.
func (t *Tree) Current() *Node {
	return t.current
}

// Path returns the cached child-index path from root to the cursor. The slice
// is owned by the tree; callers must not modify it.
func (t *Tree) Path() []int {
	return t.path
}

// ByID looks a node up by its ID. Detached (deleted) nodes are not found.
func (t *Tree) ByID(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Size returns the number of live nodes, root included.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// AddMove applies san at the cursor and advances it.
//
// If a child with the same move already exists the cursor simply moves there
// (idempotent replay). Otherwise a new child is created: the first child of a
// node extends the mainline, every later distinct move is appended as a side
// variation and does not usurp the existing continuation.
func (t *Tree) AddMove(san string) (*Node, error) {
	cur := t.current

	newFEN, err := t.rules.ApplyMove(cur.FEN, san)
	if err != nil {
		return nil, err
	}

	for _, child := range cur.Children {
		if child.Move == san || child.FEN == newFEN {
			t.setCursor(child)
			return child, nil
		}
	}

	node := newNode(cur, san, newFEN)
	if len(cur.Children) == 0 {
		cur.MainLine = node
	}
	cur.Children = append(cur.Children, node)
	t.nodes[node.ID] = node

	t.setCursor(node)
	return node, nil
}

// SetAnnotation tags a node. Unknown kinds are rejected; the tag never
// affects tree topology.
func (t *Tree) SetAnnotation(n *Node, kind string) error {
	a, ok := ParseAnnotation(kind)
	if !ok {
		return fmt.Errorf("unknown annotation %q", kind)
	}
	n.Annotation = a
	return nil
}

// setCursor moves the cursor and recomputes the derived path.
func (t *Tree) setCursor(n *Node) {
	t.current = n
	t.path = t.PathOf(n)
}
