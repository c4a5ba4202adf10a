package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/okian/rankscope/internal/config"
)

// Blob holds the serialized store. The store always reads and writes it
// whole.
type Blob interface {
	// Load returns the saved bytes or ErrBlobNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the saved bytes.
	Save(ctx context.Context, data []byte) error
	Close() error
}

// NewBlob opens the backend selected by cfg.
func NewBlob(_ context.Context, cfg *config.Config) (Blob, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFileBlob(cfg.StorePath), nil
	case config.BackendBadger:
		return OpenBadgerBlob(cfg.StorePath)
	case config.BackendMemory:
		return NewMemoryBlob(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}

// MemoryBlob keeps the blob in process memory.
type MemoryBlob struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryBlob returns a MemoryBlob. A nil initial value means nothing is
// saved yet.
func NewMemoryBlob(initial []byte) *MemoryBlob {
	b := &MemoryBlob{}
	if initial != nil {
		b.data = append([]byte(nil), initial...)
		b.set = true
	}
	return b
}

func (b *MemoryBlob) Load(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBlob) Save(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.set = true
	return nil
}

func (b *MemoryBlob) Close() error { return nil }

// compressedSuffix marks a FileBlob path whose payload is zstd-compressed.
const compressedSuffix = ".zst"

// FileBlob stores the blob in one file. Saves go through a temp file in the
// same directory followed by a rename.
type FileBlob struct {
	path     string
	compress bool
}

// NewFileBlob returns a FileBlob for path. Paths ending in ".zst" are
// compressed with zstd.
func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path, compress: strings.HasSuffix(path, compressedSuffix)}
}

// Path returns the file location.
func (b *FileBlob) Path() string { return b.path }

func (b *FileBlob) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if !b.compress {
		return raw, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", b.path, err)
	}
	return out, nil
}

func (b *FileBlob) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("failed to create encoder: %w", err)
		}
		data = enc.EncodeAll(data, make([]byte, 0, len(data)/2))
		if err := enc.Close(); err != nil {
			return fmt.Errorf("close encoder: %w", err)
		}
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBlob) Close() error { return nil }

// badgerKey is the single key the store is saved under.
var badgerKey = []byte("domainData")

// BadgerBlob stores the blob under one key in a BadgerDB directory.
type BadgerBlob struct {
	db *badger.DB
}

// OpenBadgerBlob opens (or creates) a BadgerDB at dir.
func OpenBadgerBlob(dir string) (*BadgerBlob, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &BadgerBlob{db: db}, nil
}

func (b *BadgerBlob) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger read: %w", err)
	}
	return out, nil
}

func (b *BadgerBlob) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey, data)
	})
}

func (b *BadgerBlob) Close() error {
	return b.db.Close()
}
