package eval

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/shashguru/gametree/internal/oracle"
	"github.com/shashguru/gametree/internal/tree"
)

// Orchestrator fans evaluation requests out to the scoring oracle and merges
// the results back onto tree nodes.
//
// The binding between a request and its node is captured at request time, so
// a cursor move or tree restructure while the request is in flight can never
// misfile the result. The fetch runs unlocked; only the merge onto the node
// happens under the caller's lock. A response arriving for a node that was
// deleted mid-flight still writes to that node object, which is harmless:
// nothing reachable from the tree references it anymore.
type Orchestrator struct {
	scorer        Scorer
	cache         *Cache // nil when no cache is configured
	log           zerolog.Logger
	sf            singleflight.Group
	maxConcurrent int

	inFlight  atomic.Int64
	evaluated atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
}

// NewOrchestrator creates an orchestrator. cache may be nil. maxConcurrent
// bounds batch fan-out; zero means 4.
func NewOrchestrator(scorer Scorer, cache *Cache, log zerolog.Logger, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Orchestrator{
		scorer:        scorer,
		cache:         cache,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// EvaluateNode obtains a score for n's position and attaches it to n.
//
// No-op if n already carries an evaluation. Concurrent requests for the same
// (position, depth, lines) collapse into one oracle call. mu guards the tree
// owning n: it is held only around reads of and the final write to the node,
// never across the fetch. Failures are surfaced to the caller and leave the
// node unannotated; there is no automatic retry.
func (o *Orchestrator) EvaluateNode(ctx context.Context, mu sync.Locker, n *tree.Node, depth, lines int) error {
	mu.Lock()
	if n.Eval != nil {
		mu.Unlock()
		return nil
	}
	fen := n.FEN
	mu.Unlock()

	// The oracle scores from the perspective of the side to move; record
	// which side that was at request time so consumers can normalize later.
	whiteToMove, err := oracle.SideToMove(fen)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvalFetch, err)
	}

	o.inFlight.Add(1)
	evalInFlight.Inc()
	defer func() {
		o.inFlight.Add(-1)
		evalInFlight.Dec()
	}()

	key := fmt.Sprintf("%s|%d|%d", fen, depth, lines)
	v, err, _ := o.sf.Do(key, func() (any, error) {
		return o.fetch(ctx, fen, depth, lines)
	})
	if err != nil {
		o.failed.Add(1)
		return fmt.Errorf("%w: %v", ErrEvalFetch, err)
	}
	res := v.(*Result)

	pvs := make([]tree.Line, 0, len(res.Lines))
	for _, l := range res.Lines {
		pvs = append(pvs, tree.Line{MovesUCI: l.MovesUCI, CP: l.CP, Mate: l.Mate})
	}

	mu.Lock()
	n.Eval = &tree.Evaluation{
		CP:          res.CP,
		Mate:        res.Mate,
		BestMoveUCI: res.BestMoveUCI,
		Lines:       pvs,
		Depth:       res.Depth,
		Engine:      res.Engine,
		WhiteToMove: whiteToMove,
	}
	mu.Unlock()

	o.evaluated.Add(1)
	return nil
}

// EvaluateMainLine fires one EvaluateNode per unevaluated node of the
// mainline, concurrently, and settles only once every constituent request has
// settled. Per-node failures are logged and counted but never cancel sibling
// requests; the only error returned is context cancellation.
func (o *Orchestrator) EvaluateMainLine(ctx context.Context, mu sync.Locker, t *tree.Tree, depth, lines int) error {
	mu.Lock()
	var pending []*tree.Node
	for _, n := range t.MainLine() {
		if n.Eval == nil {
			pending = append(pending, n)
		}
	}
	mu.Unlock()

	return o.EvaluateBatch(ctx, mu, pending, depth, lines)
}

// EvaluateBatch is the fan-out/fan-in join behind EvaluateMainLine.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, mu sync.Locker, nodes []*tree.Node, depth, lines int) error {
	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)

	for _, n := range nodes {
		g.Go(func() error {
			if err := o.EvaluateNode(ctx, mu, n, depth, lines); err != nil {
				o.log.Warn().Err(err).Str("node", n.ID).Msg("batch eval failed for node")
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// fetch consults the cache, then the scoring oracle, and writes fresh results
// back to the cache.
func (o *Orchestrator) fetch(ctx context.Context, fen string, depth, lines int) (*Result, error) {
	if o.cache != nil {
		if res, ok := o.cache.Get(ctx, fen, depth, lines); ok {
			o.cacheHits.Add(1)
			evalRequests.WithLabelValues("cache", "hit").Inc()
			return res, nil
		}
	}

	start := time.Now()
	res, err := o.scorer.Score(ctx, fen, depth, lines)
	evalDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		evalRequests.WithLabelValues(o.scorer.Name(), "error").Inc()
		return nil, err
	}
	evalRequests.WithLabelValues(o.scorer.Name(), "ok").Inc()

	if o.cache != nil {
		o.cache.Put(ctx, fen, depth, lines, res)
	}
	return res, nil
}

// Status is a point-in-time snapshot for the busy indicator and ops endpoint.
type Status struct {
	InFlight  int64  `json:"in_flight"`
	Evaluated int64  `json:"evaluated"`
	Failed    int64  `json:"failed"`
	CacheHits int64  `json:"cache_hits"`
	Scorer    string `json:"scorer"`
}

func (o *Orchestrator) Status() Status {
	return Status{
		InFlight:  o.inFlight.Load(),
		Evaluated: o.evaluated.Load(),
		Failed:    o.failed.Load(),
		CacheHits: o.cacheHits.Load(),
		Scorer:    o.scorer.Name(),
	}
}
