package fatfs

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// MmapDisk is a read-only BlockDevice over a memory-mapped image file,
// used to inspect volumes without opening them for writing.
type MmapDisk struct {
	reader *mmap.ReaderAt
	count  int
}

// ensure MmapDisk implements BlockDevice
var _ BlockDevice = (*MmapDisk)(nil)

func OpenMmapDisk(filename string) (*MmapDisk, error) {
	reader, err := mmap.Open(filename)
	if err != nil {
		return nil, Fatal(err)
	}
	count := reader.Len() / BlockSize
	if count < 1 {
		reader.Close()
		return nil, Fatalf("image %s too small: %d bytes", filename, reader.Len())
	}
	return &MmapDisk{reader: reader, count: count}, nil
}

func (d *MmapDisk) ReadBlock(index int) ([]byte, error) {
	if err := checkBlock(d, index, BlockSize); err != nil {
		return nil, err
	}
	block := make([]byte, BlockSize)
	_, err := d.reader.ReadAt(block, int64(index)*BlockSize)
	if err != nil {
		return nil, Fatal(err)
	}
	return block, nil
}

func (d *MmapDisk) WriteBlock(index int, block []byte) error {
	return fmt.Errorf("%w: write block %d", ErrReadOnly, index)
}

func (d *MmapDisk) BlockCount() int {
	return d.count
}

func (d *MmapDisk) Close() error {
	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}
