// Package block implements the BlockFile persistence primitive: an ordered,
// 1-indexed sequence of fixed-size blocks addressed by BlockID, backed by a
// single OS file with one block per BlockSize-byte region. It is the lowest
// layer of the storage stack; everything above it (SlottedPage, HeapFile)
// only ever sees whole blocks.
package block

import (
	"fmt"
	"os"
	"sync"

	"minidb/pkg/dberr"
)

// BlockSize is the fixed size, in bytes, of every block in every BlockFile.
const BlockSize = 4096

// ID identifies one block within a single BlockFile. Blocks are 1-indexed;
// 0 is never a valid block ID.
type ID uint32

// File is a fixed-size record-number file. Open is idempotent: calling it on
// an already-open File is a no-op, and likewise for Close. All operations
// acquire an internal lock, matching the teacher's BaseFile, even though the
// engine's statement-level concurrency model (spec §5) never calls them from
// more than one goroutine at a time; the lock keeps a File safe for
// concurrent use without requiring callers to reason about it.
type File struct {
	path string
	mu   sync.RWMutex
	f    *os.File
}

// Create makes a new, empty block file at path. It fails if a file already
// exists there, matching spec §4.2's "create (must not pre-exist)".
func Create(path string) (*File, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, dberr.Newf(dberr.Relation, "block file %s already exists", path)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("create block file %s: %w", path, err), "block.Create")
	}
	return &File{path: path, f: f}, nil
}

// Open opens an existing block file, or lazily creates it if absent — the
// catalog's "reopened lazily on first access" lifecycle (spec §3.3) relies
// on Open tolerating a missing file the same way it tolerates an existing
// one.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("open block file %s: %w", path, err), "block.Open")
	}
	return &File{path: path, f: f}, nil
}

// Close flushes and releases the underlying OS handle. Close is idempotent.
func (bf *File) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.f == nil {
		return nil
	}
	if err := bf.f.Sync(); err != nil {
		return dberr.Wrap(err, "block.Close")
	}
	err := bf.f.Close()
	bf.f = nil
	return err
}

// Drop closes and deletes the underlying file.
func (bf *File) Drop() error {
	bf.mu.Lock()
	path := bf.path
	f := bf.f
	bf.f = nil
	bf.mu.Unlock()

	if f != nil {
		_ = f.Close()
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return dberr.Wrap(err, "block.Drop")
	}
	return nil
}

// LastBlockID returns the ID of the final block in the file, or 0 if the
// file is empty.
func (bf *File) LastBlockID() (ID, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return bf.lastBlockID()
}

func (bf *File) lastBlockID() (ID, error) {
	if bf.f == nil {
		return 0, dberr.New(dberr.Relation, "block file is closed")
	}
	info, err := bf.f.Stat()
	if err != nil {
		return 0, dberr.Wrap(err, "block.LastBlockID")
	}
	return ID(info.Size() / BlockSize), nil
}

// Get returns the BlockSize bytes stored at id.
func (bf *File) Get(id ID) ([]byte, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	if bf.f == nil {
		return nil, dberr.New(dberr.Relation, "block file is closed")
	}
	if id == 0 {
		return nil, dberr.New(dberr.Relation, "block id 0 is not valid")
	}

	buf := make([]byte, BlockSize)
	offset := int64(id-1) * BlockSize
	if _, err := bf.f.ReadAt(buf, offset); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("read block %d: %w", id, err), "block.Get")
	}
	return buf, nil
}

// Put overwrites the block at id with data, which must be exactly BlockSize
// bytes, and syncs the file so the write is durable before Put returns.
func (bf *File) Put(id ID, data []byte) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.f == nil {
		return dberr.New(dberr.Relation, "block file is closed")
	}
	if len(data) != BlockSize {
		return dberr.Newf(dberr.Relation, "block data must be %d bytes, got %d", BlockSize, len(data))
	}

	offset := int64(id-1) * BlockSize
	if _, err := bf.f.WriteAt(data, offset); err != nil {
		return dberr.Wrap(fmt.Errorf("write block %d: %w", id, err), "block.Put")
	}
	return bf.f.Sync()
}

// AllocateNew appends a freshly zeroed block and returns its ID.
func (bf *File) AllocateNew() (ID, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.f == nil {
		return 0, dberr.New(dberr.Relation, "block file is closed")
	}

	last, err := bf.lastBlockID()
	if err != nil {
		return 0, err
	}
	newID := last + 1

	zero := make([]byte, BlockSize)
	offset := int64(newID-1) * BlockSize
	if _, err := bf.f.WriteAt(zero, offset); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("allocate block %d: %w", newID, err), "block.AllocateNew")
	}
	if err := bf.f.Sync(); err != nil {
		return 0, dberr.Wrap(err, "block.AllocateNew")
	}
	return newID, nil
}

// Path returns the filesystem path backing this block file.
func (bf *File) Path() string {
	return bf.path
}
