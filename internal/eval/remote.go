package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// RemoteScorer asks the HTTP analysis backend for an evaluation. The wire
// format is the backend's /evaluation contract: scores are reported from the
// perspective of the side to move, mate lines encoded as 1000+N in the
// per-line evaluation field.
type RemoteScorer struct {
	baseURL string
	client  *http.Client
}

// NewRemoteScorer points at the backend base URL (no trailing slash needed).
func NewRemoteScorer(baseURL string) *RemoteScorer {
	return &RemoteScorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (s *RemoteScorer) Name() string {
	return "remote"
}

type remoteRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
	Lines int    `json:"lines"`
}

type remoteResponse struct {
	Evaluation struct {
		Move    *string  `json:"move"`
		Score   *float64 `json:"score"`
		Mate    *int     `json:"mate"`
		WinProb *float64 `json:"winprob"`
		Lines   []struct {
			Moves      string  `json:"moves"`
			Evaluation float64 `json:"evaluation"`
		} `json:"lines"`
	} `json:"evaluation"`
	Error string `json:"error"`
}

func (s *RemoteScorer) Score(ctx context.Context, fen string, depth, lines int) (*Result, error) {
	body, err := json.Marshal(remoteRequest{FEN: fen, Depth: depth, Lines: lines})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/evaluation", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluation request: %w", err)
	}
	defer resp.Body.Close()

	var decoded remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("malformed evaluation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != "" {
			return nil, fmt.Errorf("backend: %s", decoded.Error)
		}
		return nil, fmt.Errorf("backend: status %d", resp.StatusCode)
	}

	ev := decoded.Evaluation
	out := &Result{Depth: depth, Engine: "remote"}
	if ev.Score != nil {
		out.CP = int(math.Round(*ev.Score))
	}
	if ev.Mate != nil {
		out.Mate = *ev.Mate
	}
	if ev.Move != nil {
		out.BestMoveUCI = *ev.Move
	}
	for _, l := range ev.Lines {
		line := Line{MovesUCI: l.Moves}
		// Mate lines come through as 1000+N; everything else is centipawns.
		if l.Evaluation >= 900 || l.Evaluation <= -900 {
			line.Mate = int(l.Evaluation) - int(math.Copysign(1000, l.Evaluation))
		} else {
			line.CP = int(math.Round(l.Evaluation))
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}
