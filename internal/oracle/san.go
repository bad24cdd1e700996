package oracle

import "github.com/freeeve/pgn/v3"

const (
	fileChars = "abcdefgh"
	rankChars = "12345678"
)

// MoveToUCI converts a move to UCI notation (e.g. "e2e4", "e7e8q").
func MoveToUCI(mv pgn.Mv) string {
	from := string(fileChars[mv.From%8]) + string(rankChars[mv.From/8])
	to := string(fileChars[mv.To%8]) + string(rankChars[mv.To/8])

	uci := from + to
	switch mv.Promo {
	case pgn.PromoQueen:
		uci += "q"
	case pgn.PromoRook:
		uci += "r"
	case pgn.PromoBishop:
		uci += "b"
	case pgn.PromoKnight:
		uci += "n"
	}
	return uci
}

// MoveToSAN converts a move to SAN notation given the position it is played
// from. pos is not mutated; a packed copy is used for the check probe.
func MoveToSAN(pos *pgn.GameState, mv pgn.Mv) string {
	// Castling carries its own notation
	if mv.Flags == 4 {
		if mv.To > mv.From {
			return "O-O"
		}
		return "O-O-O"
	}

	fromSq := int(mv.From)
	toSq := int(mv.To)
	fromFile := fromSq % 8
	toFile := toSq % 8
	toRank := toSq / 8

	piece := pos.PieceAt(mv.From)
	isPawn := piece == 'P' || piece == 'p'
	isCapture := pos.PieceAt(mv.To) != 0 || (isPawn && mv.Flags == 2) // en passant

	var san string
	if isPawn {
		if isCapture {
			san = string(fileChars[fromFile]) + "x" + string(fileChars[toFile]) + string(rankChars[toRank])
		} else {
			san = string(fileChars[toFile]) + string(rankChars[toRank])
		}
		san += promoSuffix(mv.Promo)
	} else {
		pieceChar := upperPiece(piece)
		san = string(pieceChar) + disambiguate(pos, mv, pieceChar) +
			captureMark(isCapture) + string(fileChars[toFile]) + string(rankChars[toRank])
	}

	// Check / checkmate suffix
	probe := pos.Pack().Unpack()
	if probe != nil {
		_ = pgn.ApplyMove(probe, mv)
		if probe.IsInCheck() {
			if len(pgn.GenerateLegalMoves(probe)) == 0 {
				san += "#"
			} else {
				san += "+"
			}
		}
	}
	return san
}

func promoSuffix(promo pgn.PromoPiece) string {
	switch promo {
	case pgn.PromoQueen:
		return "=Q"
	case pgn.PromoRook:
		return "=R"
	case pgn.PromoBishop:
		return "=B"
	case pgn.PromoKnight:
		return "=N"
	}
	return ""
}

func captureMark(isCapture bool) string {
	if isCapture {
		return "x"
	}
	return ""
}

func upperPiece(piece byte) byte {
	if piece >= 'a' && piece <= 'z' {
		return piece - 32
	}
	return piece
}

// disambiguate returns the file/rank qualifier needed when another piece of
// the same type can reach the same destination square.
func disambiguate(pos *pgn.GameState, mv pgn.Mv, pieceChar byte) string {
	fromSq := int(mv.From)
	fromFile := fromSq % 8
	fromRank := fromSq / 8

	for _, other := range pgn.GenerateLegalMoves(pos) {
		if other.To != mv.To || other.From == mv.From {
			continue
		}
		if upperPiece(pos.PieceAt(other.From)) != pieceChar {
			continue
		}
		otherFile := int(other.From) % 8
		otherRank := int(other.From) / 8
		if fromFile != otherFile {
			return string(fileChars[fromFile])
		}
		if fromRank != otherRank {
			return string(rankChars[fromRank])
		}
		return string(fileChars[fromFile]) + string(rankChars[fromRank])
	}
	return ""
}
