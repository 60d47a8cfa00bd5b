package fatfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func pattern(b byte) []byte {
	return bytes.Repeat([]byte{b}, BlockSize)
}

func exerciseDevice(t *testing.T, device BlockDevice, count int) {
	require.Equal(t, count, device.BlockCount())

	block, err := device.ReadBlock(count - 1)
	require.Nil(t, err)
	require.Equal(t, make([]byte, BlockSize), block)

	err = device.WriteBlock(2, pattern('a'))
	require.Nil(t, err)
	err = device.WriteBlock(count-1, pattern('z'))
	require.Nil(t, err)

	block, err = device.ReadBlock(2)
	require.Nil(t, err)
	require.Equal(t, pattern('a'), block)
	block, err = device.ReadBlock(count - 1)
	require.Nil(t, err)
	require.Equal(t, pattern('z'), block)

	_, err = device.ReadBlock(count)
	require.NotNil(t, err)
	_, err = device.ReadBlock(-1)
	require.NotNil(t, err)
	err = device.WriteBlock(0, []byte("short"))
	require.NotNil(t, err)
}

func TestMemoryDisk(t *testing.T) {
	exerciseDevice(t, NewMemoryDisk(8), 8)
}

func TestMemoryDiskReadReturnsCopy(t *testing.T) {
	d := NewMemoryDisk(4)
	block, err := d.ReadBlock(1)
	require.Nil(t, err)
	block[0] = 0xff
	again, err := d.ReadBlock(1)
	require.Nil(t, err)
	require.Equal(t, byte(0), again[0])
}

func TestFileDisk(t *testing.T) {
	fsys := afero.NewMemMapFs()
	d, err := CreateFileDisk(fsys, "disk.img", 8)
	require.Nil(t, err)
	exerciseDevice(t, d, 8)
	require.Nil(t, d.Close())

	file, err := fsys.OpenFile("disk.img", os.O_RDWR, 0600)
	require.Nil(t, err)
	d, err = NewFileDisk(file)
	require.Nil(t, err)
	defer d.Close()
	require.Equal(t, 8, d.BlockCount())
	block, err := d.ReadBlock(2)
	require.Nil(t, err)
	require.Equal(t, pattern('a'), block)
}

func TestFileDiskTooSmall(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := afero.WriteFile(fsys, "tiny.img", []byte("tiny"), 0600)
	require.Nil(t, err)
	file, err := fsys.Open("tiny.img")
	require.Nil(t, err)
	_, err = NewFileDisk(file)
	require.NotNil(t, err)
}

func TestMmapDisk(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "disk.img")
	fd, err := CreateFileDisk(afero.NewOsFs(), filename, 4)
	require.Nil(t, err)
	err = fd.WriteBlock(3, pattern('m'))
	require.Nil(t, err)
	require.Nil(t, fd.Close())

	d, err := OpenMmapDisk(filename)
	require.Nil(t, err)
	defer d.Close()
	require.Equal(t, 4, d.BlockCount())
	block, err := d.ReadBlock(3)
	require.Nil(t, err)
	require.Equal(t, pattern('m'), block)

	err = d.WriteBlock(3, pattern('x'))
	require.ErrorIs(t, err, ErrReadOnly)
}
