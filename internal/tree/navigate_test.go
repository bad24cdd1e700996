package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepNavigation(t *testing.T) {
	tr := newTestTree(t, "e4", "e5", "Nf3")

	require.Same(t, tr.Root(), tr.ToStart())
	require.Empty(t, tr.Path())

	// Back at the root is a no-op.
	require.Same(t, tr.Root(), tr.Back())

	require.Equal(t, "e4", tr.Forward().Move)
	require.Equal(t, []int{0}, tr.Path())
	require.Equal(t, "e5", tr.Forward().Move)
	require.Equal(t, "e4", tr.Back().Move)

	end := tr.ToEnd()
	require.Equal(t, "Nf3", end.Move)
	// Forward at a leaf is a no-op.
	require.Same(t, end, tr.Forward())
}

func TestForwardPrefersMainlineThenFirstChild(t *testing.T) {
	tr := newTestTree(t, "e4", "e5")
	afterE4 := tr.Root().MainLine
	require.NoError(t, tr.ToNode(afterE4))
	_, err := tr.AddMove("c5")
	require.NoError(t, err)

	require.NoError(t, tr.ToNode(afterE4))
	require.Equal(t, "e5", tr.Forward().Move) // mainline wins over newer variation

	// Clear the mainline marker: forward falls back to children[0].
	afterE4.MainLine = nil
	require.NoError(t, tr.ToNode(afterE4))
	require.Equal(t, "e5", tr.Forward().Move)
}

func TestToNodeRejectsForeignAndDeletedNodes(t *testing.T) {
	tr := newTestTree(t, "e4", "e5")
	other := newTestTree(t, "d4")

	require.Error(t, tr.ToNode(other.Current()))

	victim := tr.Current()
	require.Equal(t, NoOpApplied, tr.DeleteSubtree(victim))
	require.Error(t, tr.ToNode(victim))
}
