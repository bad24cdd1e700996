package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/shashguru/gametree/internal/eval"
	"github.com/shashguru/gametree/internal/oracle"
	"github.com/shashguru/gametree/internal/session"
	"github.com/shashguru/gametree/internal/tree"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeTree serializes the session's full tree view, optionally tagged with a
// no-op reason from a structural mutation.
func (h *Handler) writeTree(w http.ResponseWriter, status int, s *session.Session, noop tree.NoOpReason) {
	var resp *TreeResponse
	_ = s.Do(func(t *tree.Tree) error {
		resp = toTreeResponse(s.ID, t, s.Headers, h.ecoDB)
		return nil
	})
	resp.Noop = string(noop)
	writeJSON(w, status, resp)
}

type createGameRequest struct {
	Moves []string `json:"moves"`
	PGN   string   `json:"pgn"`
	FEN   string   `json:"fen"`
}

// createGame starts a session from game notation, a move list, or a bare FEN.
// Notation takes precedence, then FEN, then the move list; an empty body
// yields a fresh starting position.
func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	// An empty body is valid and yields a fresh starting position.
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		t       *tree.Tree
		headers map[string]string
	)
	switch {
	case req.PGN != "":
		// The notation parser reads files, so the text goes through the
		// snapshot store: once under a scratch ID for parsing, then again
		// under the session ID as the persistent snapshot.
		tmp := uuid.NewString()
		if err := h.games.Save(tmp, req.PGN); err != nil {
			h.log.Error().Err(err).Msg("stage notation for parsing")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		game, err := h.rules.LoadGameNotation(h.games.Path(tmp))
		_ = h.games.Delete(tmp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid game notation")
			return
		}
		t = tree.Build(h.rules, "", game.Moves)
		headers = game.Headers
	case req.FEN != "":
		if !h.rules.ValidFEN(req.FEN) {
			writeError(w, http.StatusBadRequest, "invalid FEN")
			return
		}
		t = tree.New(h.rules, req.FEN)
	default:
		t = tree.Build(h.rules, "", req.Moves)
	}

	s := h.reg.Create(t, headers)
	if req.PGN != "" {
		if err := h.games.Save(s.ID, req.PGN); err != nil {
			h.log.Warn().Err(err).Str("id", s.ID).Msg("persist notation snapshot")
		}
	}
	h.log.Info().Str("id", s.ID).Int("nodes", t.Size()).Msg("session created")
	h.writeTree(w, http.StatusCreated, s, tree.NoOpApplied)
}

func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	h.writeTree(w, http.StatusOK, sessionFrom(r.Context()), tree.NoOpApplied)
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	h.reg.Delete(s.ID)
	_ = h.games.Delete(s.ID)
	h.log.Info().Str("id", s.ID).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) postMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SAN string `json:"san"`
	}
	if err := decodeJSON(r, &req); err != nil || req.SAN == "" {
		writeError(w, http.StatusBadRequest, "missing san")
		return
	}

	s := sessionFrom(r.Context())
	err := s.Do(func(t *tree.Tree) error {
		_, err := t.AddMove(req.SAN)
		return err
	})
	if err != nil {
		if errors.Is(err, oracle.ErrIllegalMove) || errors.Is(err, oracle.ErrInvalidNotation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeTree(w, http.StatusOK, s, tree.NoOpApplied)
}

func (h *Handler) postNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		NodeID string `json:"node_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s := sessionFrom(r.Context())
	err := s.Do(func(t *tree.Tree) error {
		switch req.Action {
		case "start":
			t.ToStart()
		case "back":
			t.Back()
		case "forward":
			t.Forward()
		case "end":
			t.ToEnd()
		case "node":
			n, ok := t.ByID(req.NodeID)
			if !ok {
				return fmt.Errorf("unknown node %q", req.NodeID)
			}
			return t.ToNode(n)
		default:
			return fmt.Errorf("unknown action %q", req.Action)
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeTree(w, http.StatusOK, s, tree.NoOpApplied)
}

// lookupNode resolves node_id inside fn-style session access; empty means the
// cursor node.
func lookupNode(t *tree.Tree, nodeID string) (*tree.Node, bool) {
	if nodeID == "" {
		return t.Current(), true
	}
	return t.ByID(nodeID)
}

func (h *Handler) postPromote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID string `json:"node_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s := sessionFrom(r.Context())
	var reason tree.NoOpReason
	err := s.Do(func(t *tree.Tree) error {
		n, ok := lookupNode(t, req.NodeID)
		if !ok {
			return fmt.Errorf("unknown node %q", req.NodeID)
		}
		reason = t.Promote(n)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeTree(w, http.StatusOK, s, reason)
}

func (h *Handler) postDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID string `json:"node_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s := sessionFrom(r.Context())
	var reason tree.NoOpReason
	err := s.Do(func(t *tree.Tree) error {
		n, ok := lookupNode(t, req.NodeID)
		if !ok {
			return fmt.Errorf("unknown node %q", req.NodeID)
		}
		reason = t.DeleteSubtree(n)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeTree(w, http.StatusOK, s, reason)
}

func (h *Handler) postAnnotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID     string `json:"node_id"`
		Annotation string `json:"annotation"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s := sessionFrom(r.Context())
	var notFound bool
	err := s.Do(func(t *tree.Tree) error {
		n, ok := lookupNode(t, req.NodeID)
		if !ok {
			notFound = true
			return fmt.Errorf("unknown node %q", req.NodeID)
		}
		return t.SetAnnotation(n, req.Annotation)
	})
	if err != nil {
		if notFound {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeTree(w, http.StatusOK, s, tree.NoOpApplied)
}

type evalRequest struct {
	NodeID string `json:"node_id"`
	Depth  int    `json:"depth"`
	Lines  int    `json:"lines"`
}

func (h *Handler) evalParams(req *evalRequest) (depth, lines int) {
	depth, lines = req.Depth, req.Lines
	if depth <= 0 {
		depth = h.defaults.Depth
	}
	if lines <= 0 {
		lines = h.defaults.Lines
	}
	return depth, lines
}

func (h *Handler) postEval(w http.ResponseWriter, r *http.Request) {
	if h.orch == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation not configured")
		return
	}
	var req evalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	depth, lines := h.evalParams(&req)

	s := sessionFrom(r.Context())
	var target *tree.Node
	err := s.Do(func(t *tree.Tree) error {
		n, ok := lookupNode(t, req.NodeID)
		if !ok {
			return fmt.Errorf("unknown node %q", req.NodeID)
		}
		target = n
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.orch.EvaluateNode(r.Context(), s.Locker(), target, depth, lines); err != nil {
		if errors.Is(err, eval.ErrEvalFetch) {
			writeError(w, http.StatusBadGateway, "evaluation backend failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var resp *EvalResponse
	_ = s.Do(func(t *tree.Tree) error {
		resp = toEvalResponse(target.Eval)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id": target.ID,
		"eval":    resp,
	})
}

func (h *Handler) postEvalMainLine(w http.ResponseWriter, r *http.Request) {
	if h.orch == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation not configured")
		return
	}
	var req evalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	depth, lines := h.evalParams(&req)

	s := sessionFrom(r.Context())
	if err := h.orch.EvaluateMainLine(r.Context(), s.Locker(), s.Tree, depth, lines); err != nil {
		writeError(w, http.StatusInternalServerError, "evaluation interrupted")
		return
	}
	h.writeTree(w, http.StatusOK, s, tree.NoOpApplied)
}

func (h *Handler) evalStatus(w http.ResponseWriter, r *http.Request) {
	if h.orch == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"status":  h.orch.Status(),
	})
}

func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) cacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}
	if err := h.cache.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "cache unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
