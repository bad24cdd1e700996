package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildABCD builds mainline root→A→B→C with variation B→D and returns the
// four nodes.
func buildABCD(t *testing.T) (tr *Tree, a, b, c, d *Node) {
	t.Helper()
	tr = newTestTree(t, "a", "b", "c")
	a = tr.Root().MainLine
	b = a.MainLine
	c = b.MainLine
	require.NoError(t, tr.ToNode(b))
	var err error
	d, err = tr.AddMove("d")
	require.NoError(t, err)
	return tr, a, b, c, d
}

func TestPromoteVariation(t *testing.T) {
	tr, a, b, c, d := buildABCD(t)

	require.Equal(t, NoOpApplied, tr.Promote(d))

	seq := tr.MainLine()
	require.Equal(t, []*Node{tr.Root(), a, b, d}, seq)

	// C is untouched and still reachable as a variation under B.
	require.GreaterOrEqual(t, b.childIndex(c), 0)
	require.False(t, c.IsMainChild())
	checkInvariants(t, tr)
}

func TestPromoteDeepNodeInsideVariation(t *testing.T) {
	tr, _, b, _, d := buildABCD(t)

	// Extend the variation: B→D→E. Promoting E must re-point B's mainline to
	// D, the variation root, with a single swap.
	require.NoError(t, tr.ToNode(d))
	e, err := tr.AddMove("e")
	require.NoError(t, err)

	require.Equal(t, NoOpApplied, tr.Promote(e))
	require.Same(t, d, b.MainLine)
	require.Same(t, e, d.MainLine)
	checkInvariants(t, tr)
}

func TestPromoteNoOps(t *testing.T) {
	tr, _, b, c, _ := buildABCD(t)

	require.Equal(t, NoOpRoot, tr.Promote(tr.Root()))
	require.Equal(t, NoOpAlreadyMain, tr.Promote(c))
	require.Same(t, c, b.MainLine)
}

func TestDeleteRepairsMainline(t *testing.T) {
	// A→B mainline, A→C variation: deleting B leaves A.MainLine == C.
	tr := newTestTree(t, "a", "b")
	a := tr.Root().MainLine
	b := a.MainLine
	require.NoError(t, tr.ToNode(a))
	c, err := tr.AddMove("c")
	require.NoError(t, err)

	require.Equal(t, NoOpApplied, tr.DeleteSubtree(b))
	require.Same(t, c, a.MainLine)
	require.Len(t, a.Children, 1)
	checkInvariants(t, tr)
}

func TestDeleteLastChildClearsMainline(t *testing.T) {
	tr := newTestTree(t, "a", "b")
	a := tr.Root().MainLine
	b := a.MainLine

	require.Equal(t, NoOpApplied, tr.DeleteSubtree(b))
	require.Nil(t, a.MainLine)
	require.True(t, a.IsLeaf())
}

func TestDeleteMovesCursorToParent(t *testing.T) {
	tr, a, b, c, _ := buildABCD(t)

	// Cursor sits on C, a descendant of the deleted B subtree.
	require.NoError(t, tr.ToNode(c))
	require.Equal(t, NoOpApplied, tr.DeleteSubtree(b))

	require.Same(t, a, tr.Current())
	require.Equal(t, []int{0}, tr.Path())

	// The whole subtree is forgotten from the index.
	_, ok := tr.ByID(b.ID)
	require.False(t, ok)
	_, ok = tr.ByID(c.ID)
	require.False(t, ok)
}

func TestDeleteRootNoOp(t *testing.T) {
	tr := newTestTree(t, "a")
	require.Equal(t, NoOpRoot, tr.DeleteSubtree(tr.Root()))
	require.Equal(t, 2, tr.Size())
}

func TestDeletePreservesSiblingAnnotations(t *testing.T) {
	tr, _, b, c, d := buildABCD(t)
	require.NoError(t, tr.SetAnnotation(d, "good"))
	d.Eval = &Evaluation{CP: 31, Depth: 15}

	require.Equal(t, NoOpApplied, tr.DeleteSubtree(c))

	require.Equal(t, AnnotationGood, d.Annotation)
	require.NotNil(t, d.Eval)
	require.Same(t, d, b.MainLine) // C was main; repair picks first remaining
}
