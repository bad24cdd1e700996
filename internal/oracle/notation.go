package oracle

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
)

// Game is the result of parsing a game-notation string: the mainline moves in
// SAN plus the tag-pair headers. Variations and comments in the source
// notation are not represented; the caller rebuilds its own tree.
type Game struct {
	Moves   []string
	Headers map[string]string
}

// LoadGameNotation parses the first game from a PGN file. Plain .pgn and
// zstd-compressed .pgn.zst files are both accepted.
func (o *Oracle) LoadGameNotation(path string) (*Game, error) {
	parser := pgn.Games(path)

	var game *pgn.Game
	for g := range parser.Games {
		game = g
		parser.Stop()
		break
	}
	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	if game == nil {
		return nil, fmt.Errorf("%w: no game found", ErrInvalidNotation)
	}

	pos := pgn.NewStartingPosition()
	moves := make([]string, 0, len(game.Moves))
	for _, mv := range game.Moves {
		san := MoveToSAN(pos, mv)
		if err := pgn.ApplyMove(pos, mv); err != nil {
			// A parsed game should replay cleanly; stop at the first move
			// that does not, keeping the prefix.
			break
		}
		moves = append(moves, san)
	}

	headers := make(map[string]string, len(game.Tags))
	for k, v := range game.Tags {
		headers[k] = v
	}
	return &Game{Moves: moves, Headers: headers}, nil
}
