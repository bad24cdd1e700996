// Package eval schedules asynchronous position evaluations and merges the
// results onto move-tree nodes. The scoring oracle itself is pluggable: a
// local UCI engine pool or the remote analysis backend.
package eval

import (
	"context"
	"errors"
)

// ErrEvalFetch wraps any scoring-oracle failure: network errors, engine
// failures, malformed responses. A node whose fetch failed simply stays
// unevaluated; nothing is retried automatically.
var ErrEvalFetch = errors.New("evaluation fetch failed")

// Line is one principal variation reported by the scoring oracle.
type Line struct {
	MovesUCI string `json:"moves_uci"`
	CP       int    `json:"cp"`
	Mate     int    `json:"mate,omitempty"`
}

// Result is a scoring-oracle verdict for a single position. Scores are
// oriented to the side to move in that position.
type Result struct {
	CP          int    `json:"cp"`
	Mate        int    `json:"mate,omitempty"`
	BestMoveUCI string `json:"best_move_uci,omitempty"`
	Lines       []Line `json:"lines,omitempty"`
	Depth       int    `json:"depth"`
	Engine      string `json:"engine,omitempty"`
}

// Scorer is the scoring oracle: stateless from the caller's point of view,
// value-in/value-out on FEN strings.
type Scorer interface {
	Score(ctx context.Context, fen string, depth, lines int) (*Result, error)
	Name() string
}
