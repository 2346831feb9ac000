package heap

import (
	"minidb/pkg/block"
	"minidb/pkg/page"
)

// File wraps one block.File per relation, giving callers SlottedPage-level
// access to a relation's blocks instead of raw bytes (spec §4.3).
type File struct {
	blocks *block.File
}

// Create materializes a brand-new, empty heap file on disk.
func Create(path string) (*File, error) {
	bf, err := block.Create(path)
	if err != nil {
		return nil, err
	}
	return &File{blocks: bf}, nil
}

// Open reopens an existing heap file, lazily creating it if absent.
func Open(path string) (*File, error) {
	bf, err := block.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{blocks: bf}, nil
}

// Close releases the underlying block file handle. Idempotent.
func (f *File) Close() error { return f.blocks.Close() }

// Drop closes and deletes the underlying file.
func (f *File) Drop() error { return f.blocks.Drop() }

// Path returns the filesystem path backing this heap file.
func (f *File) Path() string { return f.blocks.Path() }

// GetPage reads block id and parses it as a SlottedPage.
func (f *File) GetPage(id block.ID) (*page.Page, error) {
	data, err := f.blocks.Get(id)
	if err != nil {
		return nil, err
	}
	return page.Load(data)
}

// PutPage writes p's bytes back to block id.
func (f *File) PutPage(id block.ID, p *page.Page) error {
	return f.blocks.Put(id, p.Bytes())
}

// GetNew allocates a new block, formats it as an empty SlottedPage, writes
// it out, and returns both the block id and the fresh page (spec §4.3:
// "zero-initialises a block, constructs a fresh SlottedPage, writes it out,
// and returns it").
func (f *File) GetNew() (block.ID, *page.Page, error) {
	id, err := f.blocks.AllocateNew()
	if err != nil {
		return 0, nil, err
	}
	p := page.New()
	if err := f.blocks.Put(id, p.Bytes()); err != nil {
		return 0, nil, err
	}
	return id, p, nil
}

// LastBlockID returns the id of the most recently allocated block, or 0 if
// the file has no blocks yet.
func (f *File) LastBlockID() (block.ID, error) {
	return f.blocks.LastBlockID()
}

// BlockIDs returns every block id in the file, from 1 to the last.
func (f *File) BlockIDs() ([]block.ID, error) {
	last, err := f.blocks.LastBlockID()
	if err != nil {
		return nil, err
	}
	ids := make([]block.ID, 0, last)
	for id := block.ID(1); id <= last; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}
