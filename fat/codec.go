package fat

import (
	"encoding/binary"
	"fmt"

	"github.com/rstms/fatfs"
)

// Entry header layout.
const (
	entryNameStart   = 0
	entrySizeStart   = entryNameStart + NameSize
	entryBlockStart  = entrySizeStart + 4
	entryKindStart   = entryBlockStart + 2
	entryAccessStart = entryKindStart + 1
	EntrySize        = entryAccessStart + 1
)

// ChildSize is the width of one directory child record.
const ChildSize = NameSize + 2

// Entry is the metadata record of a file or directory. It is written at
// the start of every block in the entry's chain.
type Entry struct {
	Name       Name
	Size       uint32
	FirstBlock uint16
	Kind       fatfs.Kind
	Access     fatfs.AccessRights
}

func (e Entry) IsDir() bool {
	return e.Kind == fatfs.KindDirectory
}

func (e Entry) Info() fatfs.EntryInfo {
	return fatfs.EntryInfo{
		Name:   string(e.Name),
		Size:   e.Size,
		Kind:   e.Kind,
		Access: e.Access,
		Block:  e.FirstBlock,
	}
}

// Child is a directory record naming one immediate member and the block
// holding its header.
type Child struct {
	Name  Name
	Block uint16
}

// EncodeEntry returns the EntrySize byte header for e.
func EncodeEntry(e Entry) ([]byte, error) {
	buf := make([]byte, EntrySize)
	if err := putName(buf[entryNameStart:], e.Name); err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[entrySizeStart:], e.Size)
	binary.LittleEndian.PutUint16(buf[entryBlockStart:], e.FirstBlock)
	buf[entryKindStart] = byte(e.Kind)
	buf[entryAccessStart] = byte(e.Access)
	return buf, nil
}

// DecodeEntry is the inverse of EncodeEntry. No semantic validation is
// done; callers check Kind where it matters.
func DecodeEntry(buf []byte) Entry {
	return Entry{
		Name:       getName(buf[entryNameStart:]),
		Size:       binary.LittleEndian.Uint32(buf[entrySizeStart:]),
		FirstBlock: binary.LittleEndian.Uint16(buf[entryBlockStart:]),
		Kind:       fatfs.Kind(buf[entryKindStart]),
		Access:     fatfs.AccessRights(buf[entryAccessStart]),
	}
}

// EncodeChildTable packs children in order.
func EncodeChildTable(children []Child) ([]byte, error) {
	buf := make([]byte, ChildSize*len(children))
	for i, child := range children {
		rec := buf[i*ChildSize:]
		if err := putName(rec, child.Name); err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(rec[NameSize:], child.Block)
	}
	return buf, nil
}

// DecodeChildTable reads count bytes of buf as child records.
func DecodeChildTable(buf []byte, count int) ([]Child, error) {
	if count%ChildSize != 0 {
		return nil, fmt.Errorf("%w: child table of %d bytes is not a multiple of %d", fatfs.ErrCorruptLayout, count, ChildSize)
	}
	if count > len(buf) {
		return nil, fmt.Errorf("%w: child table of %d bytes exceeds %d available", fatfs.ErrCorruptLayout, count, len(buf))
	}
	children := make([]Child, 0, count/ChildSize)
	for off := 0; off < count; off += ChildSize {
		rec := buf[off : off+ChildSize]
		children = append(children, Child{
			Name:  getName(rec),
			Block: binary.LittleEndian.Uint16(rec[NameSize:]),
		})
	}
	return children, nil
}

// BlocksNeeded is the chain length required for size content bytes. Every
// entry owns at least one block.
func BlocksNeeded(size int) int {
	if size <= 0 {
		return 1
	}
	return (size + fatfs.ContentSize - 1) / fatfs.ContentSize
}
