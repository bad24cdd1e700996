// Package store persists game-notation snapshots. The notation text is
// opaque to the service: it is compressed and written as-is, never
// re-serialized from the tree.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

// GameStore writes one zstd-compressed .pgn.zst snapshot per session.
type GameStore struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
	log zerolog.Logger
}

func NewGameStore(dir string, log zerolog.Logger) (*GameStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &GameStore{dir: dir, enc: enc, dec: dec, log: log}, nil
}

// Path returns the snapshot file for a session. The .pgn.zst name keeps the
// file directly consumable by the notation parser.
func (gs *GameStore) Path(id string) string {
	return filepath.Join(gs.dir, id+".pgn.zst")
}

// Save writes the notation snapshot atomically (temp file + rename).
func (gs *GameStore) Save(id, notation string) error {
	compressed := gs.enc.EncodeAll([]byte(notation), nil)

	tmp := gs.Path(id) + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, gs.Path(id)); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	gs.log.Debug().Str("id", id).Int("bytes", len(compressed)).Msg("saved game snapshot")
	return nil
}

// Load reads a snapshot back as plain notation text.
func (gs *GameStore) Load(id string) (string, error) {
	data, err := os.ReadFile(gs.Path(id))
	if err != nil {
		return "", err
	}
	plain, err := gs.dec.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("decompress snapshot: %w", err)
	}
	return string(plain), nil
}

// Delete removes a session's snapshot, if present.
func (gs *GameStore) Delete(id string) error {
	err := os.Remove(gs.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close releases the shared codec state.
func (gs *GameStore) Close() {
	gs.enc.Close()
	gs.dec.Close()
}
