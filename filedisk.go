package fatfs

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// FileDisk is a BlockDevice backed by a disk image file.
type FileDisk struct {
	file  afero.File
	count int
}

// ensure FileDisk implements BlockDevice
var _ BlockDevice = (*FileDisk)(nil)

// NewFileDisk wraps an open image file. The block count is derived from
// the file size; a trailing partial block is ignored.
func NewFileDisk(file afero.File) (*FileDisk, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, Fatal(err)
	}
	count := int(info.Size() / BlockSize)
	if count < 1 {
		return nil, Fatalf("image %s too small: %d bytes", file.Name(), info.Size())
	}
	return &FileDisk{file: file, count: count}, nil
}

// CreateFileDisk creates (or truncates) name on fsys and sizes it to
// hold count zeroed blocks.
func CreateFileDisk(fsys afero.Fs, name string, count int) (*FileDisk, error) {
	if count < 1 {
		return nil, Fatalf("invalid block count: %d", count)
	}
	file, err := fsys.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return nil, Fatal(err)
	}
	err = file.Truncate(int64(count) * BlockSize)
	if err != nil {
		file.Close()
		return nil, Fatal(err)
	}
	return &FileDisk{file: file, count: count}, nil
}

func (d *FileDisk) ReadBlock(index int) ([]byte, error) {
	if err := checkBlock(d, index, BlockSize); err != nil {
		return nil, err
	}
	block := make([]byte, BlockSize)
	n, err := d.file.ReadAt(block, int64(index)*BlockSize)
	if err != nil && !(err == io.EOF && n == BlockSize) {
		return nil, Fatal(err)
	}
	return block, nil
}

func (d *FileDisk) WriteBlock(index int, block []byte) error {
	if err := checkBlock(d, index, len(block)); err != nil {
		return err
	}
	_, err := d.file.WriteAt(block, int64(index)*BlockSize)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDisk) BlockCount() int {
	return d.count
}

func (d *FileDisk) Sync() error {
	if err := d.file.Sync(); err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *FileDisk) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}
