// Package oracle wraps the chess rules library behind the small surface the
// move tree needs: move application, game-notation loading, and FEN
// bookkeeping. The oracle is stateless; every call is value-in/value-out on
// FEN strings, so callers never share mutable position state with it.
package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

var (
	// ErrIllegalMove is returned when the rules library rejects a move.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidNotation is returned for malformed FEN or game notation.
	ErrInvalidNotation = errors.New("invalid game notation")
)

// Oracle validates moves and produces resulting positions.
type Oracle struct{}

func New() *Oracle {
	return &Oracle{}
}

// StartingFEN returns the FEN of the standard initial position.
func (o *Oracle) StartingFEN() string {
	return pgn.NewStartingPosition().ToFEN()
}

// ParseFEN builds a GameState from a FEN string.
func ParseFEN(fen string) (*pgn.GameState, error) {
	keyStr, err := pgn.PackedPositionFromFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	key, err := pgn.ParsePackedPosition(keyStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	pos := key.Unpack()
	if pos == nil {
		return nil, fmt.Errorf("%w: cannot unpack %q", ErrInvalidNotation, fen)
	}
	return pos, nil
}

// ValidFEN reports whether fen parses as a position.
func (o *Oracle) ValidFEN(fen string) bool {
	_, err := ParseFEN(fen)
	return err == nil
}

// ApplyMove applies a SAN move to the position described by fen and returns
// the resulting FEN. The input position is never mutated on failure.
func (o *Oracle) ApplyMove(fen, san string) (string, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return "", err
	}
	mv, err := pgn.ParseSAN(pos, strings.TrimSpace(san))
	if err != nil {
		return "", fmt.Errorf("%w: %q in %s", ErrIllegalMove, san, fen)
	}
	if err := pgn.ApplyMove(pos, mv); err != nil {
		return "", fmt.Errorf("%w: %q in %s", ErrIllegalMove, san, fen)
	}
	return pos.ToFEN(), nil
}

// SideToMove reports whether white is to move in the given position.
func SideToMove(fen string) (whiteToMove bool, err error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return false, fmt.Errorf("%w: %q", ErrInvalidNotation, fen)
	}
	switch fields[1] {
	case "w":
		return true, nil
	case "b":
		return false, nil
	}
	return false, fmt.Errorf("%w: side field %q", ErrInvalidNotation, fields[1])
}

// NormalizeFEN strips the halfmove/fullmove counters so that positions
// reached by transposition compare equal. Used for opening lookups.
func NormalizeFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}
