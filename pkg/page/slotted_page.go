// Package page implements the slotted-page record layout specified in
// spec §4.1: a fixed-size byte buffer holding a growing-up header of
// (size, loc) pairs and a growing-down region of record payloads. This is
// the in-memory structure HeapFile reads from and writes back to a block.
package page

import (
	"encoding/binary"

	"minidb/pkg/block"
	"minidb/pkg/dberr"
)

// RecordID identifies one record's header slot within a page. Record ids
// start at 1; the block header itself is conventionally addressed as id 0.
type RecordID uint16

// headerBytes is the size, in bytes, of one (size, loc) header entry.
const headerBytes = 4

// Page is an in-memory, mutable view of one block's bytes, laid out as a
// slotted page. num_records and end_free live at offsets 0 and 2; each
// record's (size, loc) header lives at offset 4*id.
type Page struct {
	data       [block.BlockSize]byte
	numRecords RecordID
	endFree    uint16
}

// New creates an empty page (num_records=0, end_free pointing at the last
// byte of the block), matching the constructor used for a freshly allocated
// block.
func New() *Page {
	p := &Page{endFree: block.BlockSize - 1}
	p.putHeader(0, uint16(p.numRecords), p.endFree)
	return p
}

// Load reconstructs a Page from raw block bytes previously produced by
// Bytes(). data must be exactly block.BlockSize bytes.
func Load(data []byte) (*Page, error) {
	if len(data) != block.BlockSize {
		return nil, dberr.Newf(dberr.Relation, "page data must be %d bytes, got %d", block.BlockSize, len(data))
	}
	p := &Page{}
	copy(p.data[:], data)
	numRecords, endFree := p.getHeader(0)
	p.numRecords = RecordID(numRecords)
	p.endFree = endFree
	return p, nil
}

// Bytes returns the raw block-sized byte buffer, ready to hand to
// block.File.Put.
func (p *Page) Bytes() []byte {
	out := make([]byte, block.BlockSize)
	copy(out, p.data[:])
	return out
}

// NumRecords returns the number of record-id slots (including tombstones)
// this page has ever handed out.
func (p *Page) NumRecords() RecordID {
	return p.numRecords
}

func (p *Page) getHeader(id RecordID) (size, loc uint16) {
	off := headerBytes * int(id)
	size = binary.LittleEndian.Uint16(p.data[off : off+2])
	loc = binary.LittleEndian.Uint16(p.data[off+2 : off+4])
	return
}

func (p *Page) putHeader(id RecordID, size, loc uint16) {
	off := headerBytes * int(id)
	binary.LittleEndian.PutUint16(p.data[off:off+2], size)
	binary.LittleEndian.PutUint16(p.data[off+2:off+4], loc)
}

// putRecordHeader writes the (size, loc) pair for id and keeps the block
// header (num_records, end_free) in sync.
func (p *Page) putRecordHeader(id RecordID, size, loc uint16) {
	p.putHeader(id, size, loc)
	p.putHeader(0, uint16(p.numRecords), p.endFree)
}

// hasRoom reports whether size bytes (including the 4-byte header the
// caller will also need) fit in the page's current free region.
func (p *Page) hasRoom(size uint16) bool {
	available := int(p.endFree) - (int(p.numRecords)+1)*headerBytes
	return int(size) <= available
}

// Add appends data as a new record, returning its freshly minted id. It
// fails with a NoRoom dberr.DBError if the record, plus its 4-byte header,
// does not fit in the remaining free space.
func (p *Page) Add(data []byte) (RecordID, error) {
	if !p.hasRoom(uint16(len(data)) + headerBytes) {
		return 0, dberr.New(dberr.NoRoom, "not enough room for new record")
	}

	id := p.numRecords + 1
	size := uint16(len(data))
	p.endFree -= size
	loc := p.endFree + 1

	p.numRecords = id
	p.putRecordHeader(id, size, loc)
	copy(p.data[loc:loc+size], data)
	return id, nil
}

// Get returns the bytes stored at id, or (nil, false) if id names a
// tombstone.
func (p *Page) Get(id RecordID) ([]byte, bool) {
	size, loc := p.getHeader(id)
	if loc == 0 {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, p.data[loc:loc+size])
	return out, true
}

// Put overwrites the record at id with data. If data is no larger than the
// existing record it is written in place and the tail slides right to close
// the freed gap; otherwise the tail slides left to open room, failing with
// NoRoom if there isn't enough free space.
func (p *Page) Put(id RecordID, data []byte) error {
	oldSize, loc := p.getHeader(id)
	newSize := uint16(len(data))

	if newSize > oldSize {
		extra := newSize - oldSize
		if !p.hasRoom(extra) {
			return dberr.New(dberr.NoRoom, "not enough room to grow record")
		}
		p.slide(loc, loc-extra)
		copy(p.data[loc-extra:loc-extra+newSize], data)
	} else {
		copy(p.data[loc:loc+newSize], data)
		p.slide(loc+newSize, loc+oldSize)
	}

	_, newLoc := p.getHeader(id)
	p.putRecordHeader(id, newSize, newLoc)
	return nil
}

// Del marks id as a tombstone (size=0, loc=0) and slides the tail right to
// reclaim its space. The id itself is never reused, preserving handle
// stability for every other live record.
func (p *Page) Del(id RecordID) {
	size, loc := p.getHeader(id)
	p.putRecordHeader(id, 0, 0)
	p.slide(loc, loc+size)
}

// Ids returns every non-tombstone record id, in ascending order.
func (p *Page) Ids() []RecordID {
	ids := make([]RecordID, 0, p.numRecords)
	for id := RecordID(1); id <= p.numRecords; id++ {
		_, loc := p.getHeader(id)
		if loc != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// slide shifts the payload bytes in [end_free+1, start) by (end - start)
// and fixes up every live header whose loc is <= start, per spec §4.1's
// slide rule. A positive shift opens a gap (growing it); a negative shift
// closes one.
func (p *Page) slide(start, end uint16) {
	shift := int(end) - int(start)
	if shift == 0 {
		return
	}

	src := int(p.endFree) + 1
	n := int(start) - src
	if n > 0 {
		dst := src + shift
		copy(p.data[dst:dst+n], p.data[src:src+n])
	}

	for _, id := range p.Ids() {
		size, loc := p.getHeader(id)
		if loc <= start {
			p.putHeader(id, size, uint16(int(loc)+shift))
		}
	}

	p.endFree = uint16(int(p.endFree) + shift)
	p.putHeader(0, uint16(p.numRecords), p.endFree)
}
