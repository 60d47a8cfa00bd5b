package fat

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rstms/fatfs"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, blocks int) (*Store, *FAT, Entry) {
	f, err := Format(fatfs.NewMemoryDisk(blocks))
	require.Nil(t, err)
	root, err := f.store.ReadEntry(RootBlock)
	require.Nil(t, err)
	return f.store, f.fat, root
}

func fileEntry(name string) Entry {
	return Entry{Name: Name(name), Kind: fatfs.KindFile, Access: fatfs.DefaultAccess}
}

func childNames(t *testing.T, s *Store, dir Entry) []string {
	children, err := s.ReadChildren(dir)
	require.Nil(t, err)
	names := []string{}
	for _, c := range children {
		names = append(names, string(c.Name))
	}
	return names
}

func TestStoreCreateLookup(t *testing.T) {
	s, fat, root := newStore(t, 16)

	entry, err := s.CreateEntry(fileEntry("a.txt"), []byte("hi"), &root)
	require.Nil(t, err)
	require.Equal(t, uint16(2), entry.FirstBlock)
	require.Equal(t, uint32(2), entry.Size)
	require.Equal(t, uint32(ChildSize), root.Size)
	require.Equal(t, EOF, fat.Next(2))

	children, err := s.ReadChildren(root)
	require.Nil(t, err)
	require.Equal(t, []Child{{Name: "a.txt", Block: 2}}, children)

	stored, err := s.ReadEntry(2)
	require.Nil(t, err)
	require.Equal(t, entry, stored)

	content, err := s.ReadContent(stored)
	require.Nil(t, err)
	require.Equal(t, []byte("hi"), content)
}

func TestStoreCreateDuplicate(t *testing.T) {
	s, fat, root := newStore(t, 16)
	_, err := s.CreateEntry(fileEntry("a.txt"), []byte("hi"), &root)
	require.Nil(t, err)
	free := fat.FreeCount()

	_, err = s.CreateEntry(fileEntry("a.txt"), []byte("again"), &root)
	require.ErrorIs(t, err, fatfs.ErrAlreadyExists)
	require.Equal(t, free, fat.FreeCount())
	require.Equal(t, []string{"a.txt"}, childNames(t, s, root))
}

func TestStoreCreateWithoutParent(t *testing.T) {
	s, _, root := newStore(t, 16)
	entry, err := s.CreateEntry(fileEntry("loose"), []byte("x"), nil)
	require.Nil(t, err)
	require.Equal(t, uint16(2), entry.FirstBlock)
	require.Empty(t, childNames(t, s, root))
}

func TestStoreMultiBlockContent(t *testing.T) {
	s, fat, root := newStore(t, 16)
	data := bytes.Repeat([]byte("0123456789"), 1000)
	entry, err := s.CreateEntry(fileEntry("big"), data, &root)
	require.Nil(t, err)
	chain, err := fat.Chain(entry.FirstBlock)
	require.Nil(t, err)
	require.Equal(t, []uint16{2, 3, 4}, chain)

	for _, b := range chain {
		header, err := s.ReadEntry(b)
		require.Nil(t, err)
		require.Equal(t, entry, header)
	}

	content, err := s.ReadContent(entry)
	require.Nil(t, err)
	require.Equal(t, data, content)
}

func TestStoreDiskFullLeavesNoTrace(t *testing.T) {
	s, fat, root := newStore(t, 4)
	_, err := s.CreateEntry(fileEntry("big"), make([]byte, 5000), &root)
	require.Nil(t, err)
	require.Equal(t, 0, fat.FreeCount())
	before := fat.Slots()

	_, err = s.CreateEntry(fileEntry("more"), []byte("x"), &root)
	require.ErrorIs(t, err, fatfs.ErrDiskFull)
	require.Equal(t, before, fat.Slots())
	require.Equal(t, []string{"big"}, childNames(t, s, root))
}

func TestStoreRemove(t *testing.T) {
	s, fat, root := newStore(t, 16)
	a, err := s.CreateEntry(fileEntry("a"), make([]byte, 5000), &root)
	require.Nil(t, err)
	_, err = s.CreateEntry(fileEntry("b"), []byte("b"), &root)
	require.Nil(t, err)

	require.Nil(t, s.RemoveEntry(a, &root))
	require.Equal(t, uint32(ChildSize), root.Size)
	require.Equal(t, []string{"b"}, childNames(t, s, root))
	require.Equal(t, Free, fat.Next(2))
	require.Equal(t, Free, fat.Next(3))
	require.Equal(t, EOF, fat.Next(4))

	root, err = s.ReadEntry(RootBlock)
	require.Nil(t, err)
	require.Equal(t, uint32(ChildSize), root.Size)
	require.Equal(t, []string{"b"}, childNames(t, s, root))

	err = s.RemoveEntry(a, &root)
	require.ErrorIs(t, err, fatfs.ErrNotFound)
}

func TestStoreRemoveNonEmptyDirectory(t *testing.T) {
	s, _, root := newStore(t, 16)
	dir, err := s.CreateEntry(Entry{Name: "d", Kind: fatfs.KindDirectory}, nil, &root)
	require.Nil(t, err)
	_, err = s.CreateEntry(fileEntry("inner"), []byte("x"), &dir)
	require.Nil(t, err)

	err = s.RemoveEntry(dir, &root)
	require.ErrorIs(t, err, fatfs.ErrDirectoryNotEmpty)
	require.Equal(t, []string{"d"}, childNames(t, s, root))
}

func TestStoreDirectorySpansBlocks(t *testing.T) {
	s, fat, root := newStore(t, 128)
	perBlock := fatfs.ContentSize / ChildSize
	for i := 0; i <= perBlock; i++ {
		_, err := s.CreateEntry(fileEntry(fmt.Sprintf("f%02d", i)), []byte{byte(i)}, &root)
		require.Nil(t, err)
	}
	require.Equal(t, uint32((perBlock+1)*ChildSize), root.Size)

	chain, err := fat.Chain(RootBlock)
	require.Nil(t, err)
	require.Len(t, chain, 2)

	names := childNames(t, s, root)
	require.Len(t, names, perBlock+1)
	require.Equal(t, fmt.Sprintf("f%02d", perBlock), names[perBlock])

	first, err := s.ReadEntry(uint16(FirstDataBlock))
	require.Nil(t, err)
	require.Nil(t, s.RemoveEntry(first, &root))
	require.Equal(t, uint32(perBlock*ChildSize), root.Size)

	chain, err = fat.Chain(RootBlock)
	require.Nil(t, err)
	require.Len(t, chain, 1)
	names = childNames(t, s, root)
	require.Len(t, names, perBlock)
	require.Equal(t, "f01", names[0])
}

func TestStoreWriteContent(t *testing.T) {
	s, fat, root := newStore(t, 16)
	entry, err := s.CreateEntry(fileEntry("grow"), []byte("x"), &root)
	require.Nil(t, err)

	data := bytes.Repeat([]byte("y"), 9000)
	entry, err = s.WriteContent(entry, data)
	require.Nil(t, err)
	require.Equal(t, uint32(9000), entry.Size)
	chain, err := fat.Chain(entry.FirstBlock)
	require.Nil(t, err)
	require.Len(t, chain, 3)
	content, err := s.ReadContent(entry)
	require.Nil(t, err)
	require.Equal(t, data, content)

	entry, err = s.WriteContent(entry, []byte("short"))
	require.Nil(t, err)
	chain, err = fat.Chain(entry.FirstBlock)
	require.Nil(t, err)
	require.Len(t, chain, 1)
	require.Equal(t, 13, fat.FreeCount())
}

func TestStoreKindChecks(t *testing.T) {
	s, _, root := newStore(t, 16)
	file, err := s.CreateEntry(fileEntry("f"), []byte("x"), &root)
	require.Nil(t, err)

	_, err = s.ReadChildren(file)
	require.ErrorIs(t, err, fatfs.ErrNotADirectory)
	_, err = s.ReadContent(root)
	require.ErrorIs(t, err, fatfs.ErrNotAFile)
	_, err = s.WriteContent(root, nil)
	require.ErrorIs(t, err, fatfs.ErrNotAFile)
}

// faultyDisk refuses writes to data blocks, and to every block once
// writes reaches zero.
type faultyDisk struct {
	*fatfs.MemoryDisk
	writes int
}

func (d *faultyDisk) WriteBlock(index int, block []byte) error {
	if index >= FirstDataBlock || d.writes == 0 {
		return errors.New("write refused")
	}
	d.writes--
	return d.MemoryDisk.WriteBlock(index, block)
}

func newFaultyStore(t *testing.T, writes int) (*Store, *FAT, *faultyDisk) {
	disk := &faultyDisk{MemoryDisk: fatfs.NewMemoryDisk(16), writes: -1}
	f, err := Format(disk)
	require.Nil(t, err)
	disk.writes = writes
	return f.store, f.fat, disk
}

func TestStoreCreateRollback(t *testing.T) {
	s, fat, _ := newFaultyStore(t, -1)
	free := fat.FreeCount()
	_, err := s.CreateEntry(fileEntry("x"), []byte("x"), nil)
	require.ErrorContains(t, err, "write refused")
	require.NotContains(t, err.Error(), "rollback")
	require.Equal(t, free, fat.FreeCount())
}

func TestStoreCreateRollbackFailure(t *testing.T) {
	// the allocation persists, the content write and the rollback do not
	s, _, _ := newFaultyStore(t, 1)
	_, err := s.CreateEntry(fileEntry("x"), []byte("x"), nil)
	require.ErrorContains(t, err, "write refused")
	require.ErrorContains(t, err, "rollback of x leaked block 2")
}
