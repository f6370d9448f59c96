// Package snapshot persists evicted chunks as zstd-compressed JSONL, one
// serialized chunk dictionary per line. It is the save-system side of the
// chunk serialization contract; the world cache only writes, never reads.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ChunkWriter implements world.SnapshotSink over one append-only file per
// world seed.
type ChunkWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewChunkWriter opens (or creates) the snapshot file for a seed under dir.
func NewChunkWriter(dir string, seed int64) (*ChunkWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("world-%d.jsonl.zst", seed))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	return &ChunkWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Path returns the snapshot file location.
func (cw *ChunkWriter) Path() string {
	return cw.path
}

// WriteChunk appends one chunk dictionary as a JSON line.
func (cw *ChunkWriter) WriteChunk(dict map[string]any) error {
	b, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.w == nil {
		return fmt.Errorf("snapshot writer closed")
	}
	if _, err := cw.w.Write(b); err != nil {
		return err
	}
	if err := cw.w.WriteByte('\n'); err != nil {
		return err
	}
	return cw.w.Flush()
}

// Close flushes and releases the underlying file.
func (cw *ChunkWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.w != nil {
		_ = cw.w.Flush()
		cw.w = nil
	}
	var err error
	if cw.enc != nil {
		err = cw.enc.Close()
		cw.enc = nil
	}
	if cw.f != nil {
		_ = cw.f.Close()
		cw.f = nil
	}
	return err
}
