package fat

import (
	"errors"
	"fmt"

	"github.com/rstms/fatfs"
)

// Store reads and writes entries and their content chains.
type Store struct {
	device fatfs.BlockDevice
	fat    *FAT
}

func NewStore(device fatfs.BlockDevice, fat *FAT) *Store {
	return &Store{device: device, fat: fat}
}

// ReadEntry decodes the header stored at block.
func (s *Store) ReadEntry(block uint16) (Entry, error) {
	buf, err := s.device.ReadBlock(int(block))
	if err != nil {
		return Entry{}, Fatal(err)
	}
	return DecodeEntry(buf[:EntrySize]), nil
}

// readChain returns exactly e.Size content bytes from e's chain.
func (s *Store) readChain(e Entry) ([]byte, error) {
	chain, err := s.fat.Chain(e.FirstBlock)
	if err != nil {
		return nil, Fatal(err)
	}
	remaining := int(e.Size)
	if remaining > len(chain)*fatfs.ContentSize {
		return nil, fmt.Errorf("%w: %q claims %d bytes in a %d block chain", fatfs.ErrCorruptLayout, e.Name, e.Size, len(chain))
	}
	content := make([]byte, 0, remaining)
	for _, block := range chain {
		if remaining == 0 {
			break
		}
		buf, err := s.device.ReadBlock(int(block))
		if err != nil {
			return nil, Fatal(err)
		}
		n := min(remaining, fatfs.ContentSize)
		content = append(content, buf[fatfs.AttributeSize:fatfs.AttributeSize+n]...)
		remaining -= n
	}
	return content, nil
}

// ReadChildren returns the child records of directory dir.
func (s *Store) ReadChildren(dir Entry) ([]Child, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, dir.Name)
	}
	content, err := s.readChain(dir)
	if err != nil {
		return nil, Fatal(err)
	}
	children, err := DecodeChildTable(content, len(content))
	if err != nil {
		return nil, Fatal(err)
	}
	return children, nil
}

// ReadContent returns the bytes of file.
func (s *Store) ReadContent(file Entry) ([]byte, error) {
	if file.IsDir() {
		return nil, fmt.Errorf("%w: %s", fatfs.ErrNotAFile, file.Name)
	}
	content, err := s.readChain(file)
	if err != nil {
		return nil, Fatal(err)
	}
	return content, nil
}

// writeChain writes e's header followed by its slice of content into
// every block of chain.
func (s *Store) writeChain(e Entry, chain []uint16, content []byte) error {
	header, err := EncodeEntry(e)
	if err != nil {
		return Fatal(err)
	}
	for i, block := range chain {
		buf := make([]byte, fatfs.BlockSize)
		copy(buf, header)
		start := i * fatfs.ContentSize
		if start < len(content) {
			end := min(start+fatfs.ContentSize, len(content))
			copy(buf[fatfs.AttributeSize:], content[start:end])
		}
		if err := s.device.WriteBlock(int(block), buf); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

// resize fits e's chain to content, growing or shrinking it in place, and
// rewrites every block. The chain head never moves.
func (s *Store) resize(e Entry, content []byte) (Entry, error) {
	chain, err := s.fat.Chain(e.FirstBlock)
	if err != nil {
		return e, Fatal(err)
	}
	need := BlocksNeeded(len(content))
	switch {
	case need > len(chain):
		extra, err := s.fat.Extend(chain[len(chain)-1], need-len(chain))
		if err != nil {
			return e, Fatal(err)
		}
		chain = append(chain, extra...)
	case need < len(chain):
		if err := s.fat.Truncate(chain[need-1]); err != nil {
			return e, Fatal(err)
		}
		chain = chain[:need]
	}
	e.Size = uint32(len(content))
	if err := s.writeChain(e, chain, content); err != nil {
		return e, Fatal(err)
	}
	return e, nil
}

// WriteContent replaces the content of file, returning the updated entry.
func (s *Store) WriteContent(file Entry, content []byte) (Entry, error) {
	if file.IsDir() {
		return file, fmt.Errorf("%w: %s", fatfs.ErrNotAFile, file.Name)
	}
	file, err := s.resize(file, content)
	if err != nil {
		return file, Fatal(err)
	}
	return file, nil
}

// UpdateEntry rewrites the header of e in each block of its chain,
// leaving content untouched.
func (s *Store) UpdateEntry(e Entry) error {
	header, err := EncodeEntry(e)
	if err != nil {
		return Fatal(err)
	}
	chain, err := s.fat.Chain(e.FirstBlock)
	if err != nil {
		return Fatal(err)
	}
	for _, block := range chain {
		buf, err := s.device.ReadBlock(int(block))
		if err != nil {
			return Fatal(err)
		}
		copy(buf, header)
		if err := s.device.WriteBlock(int(block), buf); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

func findChild(children []Child, name Name) int {
	for i, child := range children {
		if child.Name == name {
			return i
		}
	}
	return -1
}

// directory re-reads the header of dir from the device so that child
// table edits never start from a stale size.
func (s *Store) directory(dir Entry) (Entry, []Child, error) {
	fresh, err := s.ReadEntry(dir.FirstBlock)
	if err != nil {
		return dir, nil, Fatal(err)
	}
	children, err := s.ReadChildren(fresh)
	if err != nil {
		return dir, nil, Fatal(err)
	}
	return fresh, children, nil
}

func (s *Store) writeChildren(dir Entry, children []Child) (Entry, error) {
	table, err := EncodeChildTable(children)
	if err != nil {
		return dir, Fatal(err)
	}
	dir, err = s.resize(dir, table)
	if err != nil {
		return dir, Fatal(err)
	}
	return dir, nil
}

// Link adds child to directory parent and returns the updated parent.
func (s *Store) Link(parent Entry, child Child) (Entry, error) {
	dir, children, err := s.directory(parent)
	if err != nil {
		return parent, Fatal(err)
	}
	if findChild(children, child.Name) >= 0 {
		return dir, fmt.Errorf("%w: %s", fatfs.ErrAlreadyExists, child.Name)
	}
	dir, err = s.writeChildren(dir, append(children, child))
	if err != nil {
		return dir, Fatal(err)
	}
	return dir, nil
}

// Unlink removes the record called name from directory parent, repacking
// the table, and returns the updated parent and the removed record.
func (s *Store) Unlink(parent Entry, name Name) (Entry, Child, error) {
	dir, children, err := s.directory(parent)
	if err != nil {
		return parent, Child{}, Fatal(err)
	}
	i := findChild(children, name)
	if i < 0 {
		return dir, Child{}, fmt.Errorf("%w: %s", fatfs.ErrNotFound, name)
	}
	child := children[i]
	children = append(children[:i], children[i+1:]...)
	dir, err = s.writeChildren(dir, children)
	if err != nil {
		return dir, child, Fatal(err)
	}
	return dir, child, nil
}

// rollback frees the chain of a partially created entry. A failure to
// free is reported along with cause since the blocks stay allocated.
func (s *Store) rollback(entry Entry, cause error) error {
	if err := s.fat.Free(entry.FirstBlock); err != nil {
		return errors.Join(Fatal(cause), fmt.Errorf("rollback of %s leaked block %d: %w", entry.Name, entry.FirstBlock, err))
	}
	return Fatal(cause)
}

// CreateEntry stores entry with content in a newly allocated chain and,
// when parent is not nil, links it into parent, updating *parent. Name
// collisions and lack of space are detected before anything is written.
func (s *Store) CreateEntry(entry Entry, content []byte, parent *Entry) (Entry, error) {
	if _, err := EncodeEntry(entry); err != nil {
		return entry, Fatal(err)
	}
	need := BlocksNeeded(len(content))
	if parent != nil {
		dir, children, err := s.directory(*parent)
		if err != nil {
			return entry, Fatal(err)
		}
		if findChild(children, entry.Name) >= 0 {
			return entry, fmt.Errorf("%w: %s", fatfs.ErrAlreadyExists, entry.Name)
		}
		chain, err := s.fat.Chain(dir.FirstBlock)
		if err != nil {
			return entry, Fatal(err)
		}
		need += max(0, BlocksNeeded((len(children)+1)*ChildSize)-len(chain))
	}
	if free := s.fat.FreeCount(); free < need {
		return entry, fmt.Errorf("%w: %s needs %d blocks, %d free", fatfs.ErrDiskFull, entry.Name, need, free)
	}

	blocks, err := s.fat.Alloc(BlocksNeeded(len(content)))
	if err != nil {
		return entry, Fatal(err)
	}
	entry.FirstBlock = blocks[0]
	entry.Size = uint32(len(content))
	if err := s.writeChain(entry, blocks, content); err != nil {
		return entry, s.rollback(entry, err)
	}
	if parent == nil {
		return entry, nil
	}
	dir, err := s.Link(*parent, Child{Name: entry.Name, Block: entry.FirstBlock})
	if err != nil {
		return entry, s.rollback(entry, err)
	}
	*parent = dir
	return entry, nil
}

// RemoveEntry frees entry's chain and unlinks it from parent, updating
// *parent. Only empty directories may be removed.
func (s *Store) RemoveEntry(entry Entry, parent *Entry) error {
	dir, children, err := s.directory(*parent)
	if err != nil {
		return Fatal(err)
	}
	i := findChild(children, entry.Name)
	if i < 0 || children[i].Block != entry.FirstBlock {
		return fmt.Errorf("%w: %s in %s", fatfs.ErrNotFound, entry.Name, dir.Name)
	}
	current, err := s.ReadEntry(entry.FirstBlock)
	if err != nil {
		return Fatal(err)
	}
	if current.IsDir() && current.Size > 0 {
		return fmt.Errorf("%w: %s", fatfs.ErrDirectoryNotEmpty, entry.Name)
	}
	if err := s.fat.Free(entry.FirstBlock); err != nil {
		return Fatal(err)
	}
	dir, _, err = s.Unlink(dir, entry.Name)
	if err != nil {
		return Fatal(err)
	}
	*parent = dir
	return nil
}
