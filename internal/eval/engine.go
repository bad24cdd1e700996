package eval

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/freeeve/uci"
	"github.com/rs/zerolog"
)

// EngineConfig configures the local UCI engine pool.
type EngineConfig struct {
	Path     string // path to the engine executable
	PoolSize int    // concurrent engine processes
	Threads  int    // engine threads per process
	HashMB   int    // engine hash table size per process
}

// EngineScorer scores positions with a pool of local UCI engine processes.
// Each Score call checks an engine out of the pool for its whole duration, so
// at most PoolSize analyses run at once.
type EngineScorer struct {
	cfg  EngineConfig
	name string
	log  zerolog.Logger
	pool chan *uci.Engine
}

// NewEngineScorer spawns the engine pool.
func NewEngineScorer(cfg EngineConfig, log zerolog.Logger) (*EngineScorer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("engine path required")
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 2
	}
	if cfg.Threads == 0 {
		cfg.Threads = 4
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 64
	}

	s := &EngineScorer{
		cfg:  cfg,
		name: strings.TrimSuffix(filepath.Base(cfg.Path), filepath.Ext(cfg.Path)),
		log:  log,
		pool: make(chan *uci.Engine, cfg.PoolSize),
	}
	for i := 0; i < cfg.PoolSize; i++ {
		engine, err := uci.NewEngine(cfg.Path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create engine %d/%d: %w", i+1, cfg.PoolSize, err)
		}
		s.pool <- engine
		log.Info().Int("engine", i+1).Int("of", cfg.PoolSize).Msg("engine initialized")
	}
	return s, nil
}

func (s *EngineScorer) Name() string {
	return s.name
}

// Score runs a fixed-depth MultiPV analysis of the position.
func (s *EngineScorer) Score(ctx context.Context, fen string, depth, lines int) (*Result, error) {
	var engine *uci.Engine
	select {
	case engine = <-s.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { s.pool <- engine }()

	opts := uci.Options{
		Hash:    s.cfg.HashMB,
		Threads: s.cfg.Threads,
		MultiPV: lines,
		Ponder:  false,
		OwnBook: false,
	}
	if err := engine.SetOptions(opts); err != nil {
		return nil, fmt.Errorf("set options: %w", err)
	}
	if err := engine.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("set FEN: %w", err)
	}

	results, err := engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("engine eval: %w", err)
	}
	if len(results.Results) == 0 {
		return nil, fmt.Errorf("no results from engine")
	}

	out := &Result{Depth: depth, Engine: s.name}
	for i, r := range results.Results {
		if i >= lines {
			break
		}
		line := Line{MovesUCI: strings.Join(r.BestMoves, " ")}
		if r.Mate {
			line.Mate = r.Score
		} else {
			line.CP = r.Score
		}
		out.Lines = append(out.Lines, line)
	}

	best := results.Results[0]
	if best.Mate {
		out.Mate = best.Score
	} else {
		out.CP = best.Score
	}
	if best.Depth > 0 {
		out.Depth = best.Depth
	}
	if len(best.BestMoves) > 0 {
		out.BestMoveUCI = best.BestMoves[0]
	}
	return out, nil
}

// Close shuts down every engine currently in the pool.
func (s *EngineScorer) Close() {
	for {
		select {
		case engine := <-s.pool:
			engine.Close()
		default:
			return
		}
	}
}
