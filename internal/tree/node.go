// Package tree implements the branching move-tree model at the heart of the
// analysis service: a rooted tree of explored plies with a designated
// mainline, a cursor, and structural mutation (insert, promote, delete) kept
// in sync with the rules oracle. The tree is a plain owned-state object; it
// carries no UI or transport coupling.
package tree

import "github.com/google/uuid"

// Annotation is a closed classification tag attached to a node: either a
// move-quality mark or a positional-style (shashin) mark.
type Annotation string

const (
	AnnotationNone        Annotation = ""
	AnnotationBrilliant   Annotation = "brilliant"
	AnnotationGood        Annotation = "good"
	AnnotationInteresting Annotation = "interesting"
	AnnotationDubious     Annotation = "dubious"
	AnnotationMistake     Annotation = "mistake"
	AnnotationBlunder     Annotation = "blunder"
	AnnotationBook        Annotation = "book"

	// Positional styles, after the shashin classification
	AnnotationTal        Annotation = "tal"
	AnnotationCapablanca Annotation = "capablanca"
	AnnotationPetrosian  Annotation = "petrosian"
)

var annotations = map[Annotation]bool{
	AnnotationNone:        true,
	AnnotationBrilliant:   true,
	AnnotationGood:        true,
	AnnotationInteresting: true,
	AnnotationDubious:     true,
	AnnotationMistake:     true,
	AnnotationBlunder:     true,
	AnnotationBook:        true,
	AnnotationTal:         true,
	AnnotationCapablanca:  true,
	AnnotationPetrosian:   true,
}

// ParseAnnotation reports whether s names a known annotation.
func ParseAnnotation(s string) (Annotation, bool) {
	a := Annotation(s)
	return a, annotations[a]
}

// Line is one principal variation from an engine evaluation.
type Line struct {
	MovesUCI string // space-separated UCI moves
	CP       int
	Mate     int // mate in N plies-to-mate sign convention of the engine; 0 if none
}

// Evaluation is the engine verdict for one node's position. Scores are
// oriented to the side to move in that position; WhiteToMove is captured at
// request time so consumers can normalize to a single perspective without
// consulting mutable UI state later.
type Evaluation struct {
	CP          int
	Mate        int
	BestMoveUCI string
	Lines       []Line
	Depth       int
	Engine      string
	WhiteToMove bool
}

// Node is one ply in the explored game space.
//
// Identity is by ID only: two nodes in different branches may share the same
// move and position. The parent link is navigational; deleting a child never
// touches the parent beyond its child list.
type Node struct {
	ID       string
	Move     string // SAN; empty only for the root
	FEN      string // position after Move; starting position for the root
	Parent   *Node
	Children []*Node
	MainLine *Node // member of Children, or nil

	Annotation Annotation
	Eval       *Evaluation
}

func newNode(parent *Node, move, fen string) *Node {
	return &Node{
		ID:     uuid.NewString(),
		Move:   move,
		FEN:    fen,
		Parent: parent,
	}
}

// IsRoot reports whether n is the synthetic root node.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsMainChild reports whether n is its parent's designated continuation.
// The root is on the mainline by definition.
func (n *Node) IsMainChild() bool {
	return n.Parent == nil || n.Parent.MainLine == n
}

// childIndex returns the index of c within n.Children, or -1.
func (n *Node) childIndex(c *Node) int {
	for i, ch := range n.Children {
		if ch == c {
			return i
		}
	}
	return -1
}

// hasAncestor reports whether a is n itself or one of its ancestors.
func (n *Node) hasAncestor(a *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == a {
			return true
		}
	}
	return false
}
