package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/shashguru/gametree/internal/eco"
	"github.com/shashguru/gametree/internal/tree"
)

// NodeResponse is the JSON-friendly view of one tree node. Children are in
// insertion order; the mainline child is flagged rather than reordered so the
// client can render variations stably.
type NodeResponse struct {
	ID         string          `json:"id"`
	Move       string          `json:"move,omitempty"`
	FEN        string          `json:"fen"`
	Main       bool            `json:"main"`
	Annotation string          `json:"annotation,omitempty"`
	ECO        string          `json:"eco,omitempty"`
	Opening    string          `json:"opening,omitempty"`
	Eval       *EvalResponse   `json:"eval,omitempty"`
	Children   []*NodeResponse `json:"children,omitempty"`
}

type EvalResponse struct {
	CP          int            `json:"cp"`
	Mate        int            `json:"mate,omitempty"`
	BestMoveUCI string         `json:"best_move_uci,omitempty"`
	Depth       int            `json:"depth"`
	Engine      string         `json:"engine,omitempty"`
	WhiteToMove bool           `json:"white_to_move"`
	Lines       []LineResponse `json:"lines,omitempty"`
}

type LineResponse struct {
	MovesUCI string `json:"moves_uci"`
	CP       int    `json:"cp"`
	Mate     int    `json:"mate,omitempty"`
}

// TreeResponse is the whole-session view the client synchronizes against.
type TreeResponse struct {
	SessionID string            `json:"session_id"`
	Root      *NodeResponse     `json:"root"`
	CurrentID string            `json:"current_id"`
	Path      []int             `json:"path"`
	Size      int               `json:"size"`
	Headers   map[string]string `json:"headers,omitempty"`
	Noop      string            `json:"noop,omitempty"`
}

func toEvalResponse(e *tree.Evaluation) *EvalResponse {
	if e == nil {
		return nil
	}
	out := &EvalResponse{
		CP:          e.CP,
		Mate:        e.Mate,
		BestMoveUCI: e.BestMoveUCI,
		Depth:       e.Depth,
		Engine:      e.Engine,
		WhiteToMove: e.WhiteToMove,
	}
	for _, l := range e.Lines {
		out.Lines = append(out.Lines, LineResponse{MovesUCI: l.MovesUCI, CP: l.CP, Mate: l.Mate})
	}
	return out
}

func toNodeResponse(n *tree.Node, ecoDB *eco.Database) *NodeResponse {
	resp := &NodeResponse{
		ID:         n.ID,
		Move:       n.Move,
		FEN:        n.FEN,
		Main:       n.IsMainChild(),
		Annotation: string(n.Annotation),
		Eval:       toEvalResponse(n.Eval),
	}
	if ecoDB != nil {
		if o := ecoDB.Lookup(n.FEN); o != nil {
			resp.ECO = o.ECO
			resp.Opening = o.Name
		}
	}
	for _, c := range n.Children {
		resp.Children = append(resp.Children, toNodeResponse(c, ecoDB))
	}
	return resp
}

func toTreeResponse(sessionID string, t *tree.Tree, headers map[string]string, ecoDB *eco.Database) *TreeResponse {
	path := t.Path()
	if path == nil {
		path = []int{}
	}
	return &TreeResponse{
		SessionID: sessionID,
		Root:      toNodeResponse(t.Root(), ecoDB),
		CurrentID: t.Current().ID,
		Path:      path,
		Size:      t.Size(),
		Headers:   headers,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
