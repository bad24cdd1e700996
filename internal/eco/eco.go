// Package eco provides ECO (Encyclopedia of Chess Openings) lookup.
package eco

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/shashguru/gametree/internal/oracle"
)

// Opening is an ECO opening classification.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// Database indexes openings by normalized FEN, so the move-clock fields a
// live game accumulates never defeat the lookup.
type Database struct {
	byFEN map[string]Opening
	count int
}

func NewDatabase() *Database {
	return &Database{
		byFEN: make(map[string]Opening),
	}
}

// moveNumberRegex matches move numbers like "1." or "12..."
var moveNumberRegex = regexp.MustCompile(`\d+\.+\s*`)

// LoadDir loads all .tsv files from a directory.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single TSV file (eco\tname\tpgn).
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.HasPrefix(line, "eco\t") {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		pos := pgn.NewStartingPosition()
		if err := applyMoves(pos, parts[2]); err != nil {
			// Skip invalid lines silently
			continue
		}

		db.byFEN[oracle.NormalizeFEN(pos.ToFEN())] = Opening{ECO: parts[0], Name: parts[1]}
		db.count++
	}

	return scanner.Err()
}

// applyMoves parses and applies numbered movetext like "1. e4 e5 2. Nf3".
func applyMoves(pos *pgn.GameState, movetext string) error {
	cleaned := moveNumberRegex.ReplaceAllString(movetext, "")

	for _, san := range strings.Fields(cleaned) {
		if san == "" || san[0] == '$' || san[0] == '{' {
			continue
		}
		san = strings.TrimSuffix(san, "+")
		san = strings.TrimSuffix(san, "#")

		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return fmt.Errorf("parse %q: %w", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return fmt.Errorf("apply %q: %w", san, err)
		}
	}
	return nil
}

// Lookup returns the opening reached by a position, or nil.
func (db *Database) Lookup(fen string) *Opening {
	if o, ok := db.byFEN[oracle.NormalizeFEN(fen)]; ok {
		return &o
	}
	return nil
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return db.count
}
