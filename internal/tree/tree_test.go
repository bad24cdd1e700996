package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRules is a deterministic stand-in for the position oracle: any move is
// legal unless listed in rejects, and the "position" is just the move history
// appended to the start FEN. Tree semantics never inspect FEN contents.
type fakeRules struct {
	rejects map[string]bool
}

func (f *fakeRules) StartingFEN() string { return "startpos" }

func (f *fakeRules) ApplyMove(fen, san string) (string, error) {
	if f.rejects[san] {
		return "", errors.New("illegal move: " + san)
	}
	return fen + "/" + san, nil
}

func newTestTree(t *testing.T, moves ...string) *Tree {
	t.Helper()
	return Build(&fakeRules{}, "", moves)
}

func TestBuildMainlineScenario(t *testing.T) {
	// Load e4 e5 Nf3 Nc6 Bb5: five mainline nodes, no variations.
	tr := newTestTree(t, "e4", "e5", "Nf3", "Nc6", "Bb5")

	seq := tr.MainLine()
	require.Len(t, seq, 6) // root + 5 plies

	require.True(t, seq[0].IsRoot())
	for i, n := range seq[1:] {
		require.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}[i], n.Move)
		require.Len(t, n.Parent.Children, 1)
		require.Same(t, n, n.Parent.MainLine)
	}
	require.Same(t, seq[5], tr.Current())
	require.Equal(t, []int{0, 0, 0, 0, 0}, tr.Path())
}

func TestBuildStopsOnRejectedMove(t *testing.T) {
	rules := &fakeRules{rejects: map[string]bool{"bogus": true}}
	tr := Build(rules, "", []string{"e4", "e5", "bogus", "Nf3"})

	require.Equal(t, 3, tr.Size()) // root, e4, e5
	require.Equal(t, "e5", tr.Current().Move)
	require.True(t, tr.Current().IsLeaf())
}

func TestAddMoveVariationScenario(t *testing.T) {
	// From the node after e4, add c5 then replay e5: two children, mainline
	// still the original e5.
	tr := newTestTree(t, "e4", "e5")
	afterE4 := tr.Root().MainLine
	e5 := afterE4.MainLine
	require.NoError(t, tr.ToNode(afterE4))

	c5, err := tr.AddMove("c5")
	require.NoError(t, err)
	require.NotSame(t, e5, c5)

	require.NoError(t, tr.ToNode(afterE4))
	again, err := tr.AddMove("e5")
	require.NoError(t, err)
	require.Same(t, e5, again)

	require.Len(t, afterE4.Children, 2)
	require.Same(t, e5, afterE4.MainLine)
	require.False(t, c5.IsMainChild())
}

func TestAddMoveIdempotentReplay(t *testing.T) {
	tr := newTestTree(t, "e4")
	afterE4 := tr.Current()

	first, err := tr.AddMove("e5")
	require.NoError(t, err)

	require.NoError(t, tr.ToNode(afterE4))
	second, err := tr.AddMove("e5")
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Len(t, afterE4.Children, 1)
	require.Same(t, first, tr.Current())
}

func TestAddMoveIllegalLeavesTreeUntouched(t *testing.T) {
	rules := &fakeRules{rejects: map[string]bool{"Ke8": true}}
	tr := Build(rules, "", []string{"e4"})
	before := tr.Current()
	size := tr.Size()

	_, err := tr.AddMove("Ke8")
	require.Error(t, err)
	require.Same(t, before, tr.Current())
	require.Equal(t, size, tr.Size())
	require.True(t, before.IsLeaf())
}

func TestPathRoundTrip(t *testing.T) {
	tr := newTestTree(t, "e4", "e5", "Nf3")

	// Grow a couple of variations to make paths non-trivial.
	require.NoError(t, tr.ToNode(tr.Root().MainLine))
	_, err := tr.AddMove("c5")
	require.NoError(t, err)
	_, err = tr.AddMove("Nf3")
	require.NoError(t, err)

	for _, n := range collectNodes(tr.Root()) {
		got, err := tr.NodeAt(tr.PathOf(n))
		require.NoError(t, err)
		require.Same(t, n, got, "path round-trip for %q", n.Move)
	}

	require.Empty(t, tr.PathOf(tr.Root()))
}

func TestStructuralInvariants(t *testing.T) {
	tr := newTestTree(t, "e4", "e5", "Nf3", "Nc6")

	// A busy mutation sequence: variations, promotions, deletions.
	require.NoError(t, tr.ToNode(tr.Root().MainLine))
	_, err := tr.AddMove("c5")
	require.NoError(t, err)
	_, err = tr.AddMove("Nf3")
	require.NoError(t, err)
	c5 := tr.Current().Parent
	require.Equal(t, NoOpApplied, tr.Promote(c5))
	tr.ToStart()
	tr.Forward()
	tr.Forward()
	require.Equal(t, NoOpApplied, tr.DeleteSubtree(tr.Current()))

	checkInvariants(t, tr)
}

// checkInvariants verifies acyclicity, single-parent linkage, mainline
// containment, and ID-index consistency for every live node.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()

	seen := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		require.False(t, seen[n.ID], "node %s reachable twice", n.ID)
		seen[n.ID] = true

		if n.MainLine != nil {
			require.GreaterOrEqual(t, n.childIndex(n.MainLine), 0,
				"mainline of %q not among its children", n.Move)
		}
		for _, c := range n.Children {
			require.Same(t, n, c.Parent)
			require.False(t, n.hasAncestor(c), "cycle through %q", c.Move)
			walk(c)
		}
	}
	walk(tr.Root())

	require.Equal(t, len(seen), tr.Size())
	for id := range seen {
		_, ok := tr.ByID(id)
		require.True(t, ok)
	}
}

func collectNodes(root *Node) []*Node {
	nodes := []*Node{root}
	for _, c := range root.Children {
		nodes = append(nodes, collectNodes(c)...)
	}
	return nodes
}

func TestSetAnnotation(t *testing.T) {
	tr := newTestTree(t, "e4")
	n := tr.Current()

	require.NoError(t, tr.SetAnnotation(n, "brilliant"))
	require.Equal(t, AnnotationBrilliant, n.Annotation)

	require.NoError(t, tr.SetAnnotation(n, "tal"))
	require.Equal(t, AnnotationTal, n.Annotation)

	err := tr.SetAnnotation(n, "amazing")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "amazing"))
	require.Equal(t, AnnotationTal, n.Annotation)
}
