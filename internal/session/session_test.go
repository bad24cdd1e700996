package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shashguru/gametree/internal/tree"
)

type stubRules struct{}

func (stubRules) StartingFEN() string { return "start w - - 0 1" }

func (stubRules) ApplyMove(fen, san string) (string, error) {
	return fen + "/" + san, nil
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	s := r.Create(tree.New(stubRules{}, ""), map[string]string{"Event": "Casual"})
	require.NotEmpty(t, s.ID)
	require.Equal(t, 1, r.Len())

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	require.Same(t, s, got)

	_, ok = r.Get("missing")
	require.False(t, ok)

	require.True(t, r.Delete(s.ID))
	require.False(t, r.Delete(s.ID))
	require.Equal(t, 0, r.Len())
}

func TestSessionDoSerializesAccess(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	s := r.Create(tree.New(stubRules{}, ""), nil)

	err := s.Do(func(tr *tree.Tree) error {
		_, err := tr.AddMove("e4")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 2, s.Tree.Size())
}

func TestSweepDropsIdleSessions(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	stale := r.Create(tree.New(stubRules{}, ""), nil)
	fresh := r.Create(tree.New(stubRules{}, ""), nil)

	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	require.Equal(t, 1, r.Sweep(30*time.Minute))
	_, ok := r.Get(stale.ID)
	require.False(t, ok)
	_, ok = r.Get(fresh.ID)
	require.True(t, ok)
}

func TestGetRefreshesIdleClock(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	s := r.Create(tree.New(stubRules{}, ""), nil)

	s.mu.Lock()
	s.lastSeen = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	_, ok := r.Get(s.ID)
	require.True(t, ok)
	require.Equal(t, 0, r.Sweep(30*time.Minute))
}
