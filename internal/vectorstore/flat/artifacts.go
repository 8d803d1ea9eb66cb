package flat

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"careerbot/internal/domain"
)

const (
	IndexFile  = "index.bin"
	ChunksFile = "chunks.json"
	lockFile   = "index.lock"

	indexMagic   = "CBIX"
	indexVersion = 1
	headerSize   = 4 + 4 + 16 + 4 + 4
)

var (
	ErrArtifactsMissing = errors.New("index artifacts missing")
	ErrArtifactsCorrupt = errors.New("index artifacts corrupt")
)

type chunkFile struct {
	BuildID   string             `json:"build_id"`
	Dimension int                `json:"dimension"`
	Chunks    []domain.TextChunk `json:"chunks"`
}

// Save writes the index matrix and its chunk texts to dir as a pair. Both
// files carry the same build id and are renamed into place under an
// exclusive lock, so Load never pairs halves of different builds.
func Save(dir string, idx *Storage, chunks []domain.TextChunk) error {
	if idx.Len() != len(chunks) {
		return fmt.Errorf("save index: %d vectors for %d chunks", idx.Len(), len(chunks))
	}
	for i, ch := range chunks {
		if ch.Position != i {
			return fmt.Errorf("save index: chunk %d has position %d", i, ch.Position)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock index dir: %w", err)
	}
	defer lock.Unlock()

	id := uuid.New()
	indexData := encodeIndex(id, idx)
	chunkData, err := json.Marshal(chunkFile{BuildID: id.String(), Dimension: idx.Dimension(), Chunks: chunks})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, IndexFile)
	chunksPath := filepath.Join(dir, ChunksFile)
	if err := os.WriteFile(indexPath+".tmp", indexData, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(chunksPath+".tmp", chunkData, 0o644); err != nil {
		_ = os.Remove(indexPath + ".tmp")
		return err
	}
	if err := os.Rename(indexPath+".tmp", indexPath); err != nil {
		return err
	}
	return os.Rename(chunksPath+".tmp", chunksPath)
}

// Load reads a pair written by Save. It fails with ErrArtifactsMissing when
// either file is absent and ErrArtifactsCorrupt when they do not decode or
// do not belong together.
func Load(dir string) (*Storage, []domain.TextChunk, error) {
	indexPath := filepath.Join(dir, IndexFile)
	chunksPath := filepath.Join(dir, ChunksFile)
	for _, p := range []string{indexPath, chunksPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil, fmt.Errorf("%w: %s", ErrArtifactsMissing, filepath.Base(p))
			}
			return nil, nil, err
		}
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	if err := lock.RLock(); err != nil {
		return nil, nil, fmt.Errorf("lock index dir: %w", err)
	}
	defer lock.Unlock()

	indexData, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, nil, err
	}
	chunkData, err := os.ReadFile(chunksPath)
	if err != nil {
		return nil, nil, err
	}

	id, idx, err := decodeIndex(indexData)
	if err != nil {
		return nil, nil, err
	}
	var cf chunkFile
	if err := json.Unmarshal(chunkData, &cf); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrArtifactsCorrupt, err)
	}
	if cf.BuildID != id.String() {
		return nil, nil, fmt.Errorf("%w: build id mismatch", ErrArtifactsCorrupt)
	}
	if len(cf.Chunks) != idx.Len() || cf.Dimension != idx.Dimension() {
		return nil, nil, fmt.Errorf("%w: %d chunks for %d vectors", ErrArtifactsCorrupt, len(cf.Chunks), idx.Len())
	}
	for i, ch := range cf.Chunks {
		if ch.Position != i {
			return nil, nil, fmt.Errorf("%w: chunk %d has position %d", ErrArtifactsCorrupt, i, ch.Position)
		}
	}
	return idx, cf.Chunks, nil
}

func encodeIndex(id uuid.UUID, idx *Storage) []byte {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var buf bytes.Buffer
	buf.Grow(headerSize + len(idx.data)*4)
	buf.WriteString(indexMagic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(indexVersion))
	buf.Write(id[:])
	_ = binary.Write(&buf, binary.LittleEndian, uint32(idx.n))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(idx.dimension))
	_ = binary.Write(&buf, binary.LittleEndian, idx.data)
	return buf.Bytes()
}

func decodeIndex(data []byte) (uuid.UUID, *Storage, error) {
	var id uuid.UUID
	if len(data) < headerSize || string(data[:4]) != indexMagic {
		return id, nil, fmt.Errorf("%w: bad header", ErrArtifactsCorrupt)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != indexVersion {
		return id, nil, fmt.Errorf("%w: unsupported version %d", ErrArtifactsCorrupt, v)
	}
	copy(id[:], data[8:24])
	n := int(binary.LittleEndian.Uint32(data[24:28]))
	dim := int(binary.LittleEndian.Uint32(data[28:32]))
	if dim <= 0 || len(data) != headerSize+n*dim*4 {
		return id, nil, fmt.Errorf("%w: truncated matrix", ErrArtifactsCorrupt)
	}
	matrix := make([]float32, n*dim)
	body := data[headerSize:]
	for i := range matrix {
		matrix[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	idx := New()
	_ = idx.Init(context.Background(), dim)
	idx.data = matrix
	idx.n = n
	return id, idx, nil
}
