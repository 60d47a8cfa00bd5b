package image

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/rstms/fatfs"
	"github.com/rstms/fatfs/fat"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func testFiles() map[string][]byte {
	return map[string][]byte{
		"foo": []byte("foo content"),
		"bar": bytes.Repeat([]byte("bar"), 3000),
		"baz": {},
	}
}

func writeTestFiles(t *testing.T, fsys afero.Fs, dir string) {
	for name, data := range testFiles() {
		err := afero.WriteFile(fsys, filepath.Join(dir, name), data, 0600)
		require.Nil(t, err)
	}
}

func TestImageAddFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTestFiles(t, fsys, "testdata")

	i, err := CreateImage(fsys, "dst.img", 64)
	require.Nil(t, err)
	for name := range testFiles() {
		err := i.AddFile(name, filepath.Join("testdata", name))
		require.Nil(t, err)
	}

	err = i.Mkdir("files")
	require.Nil(t, err)
	err = i.Mkdir("files")
	require.NotNil(t, err)

	err = afero.WriteFile(fsys, "howdy", []byte("howdy howdy howdy"), 0600)
	require.Nil(t, err)
	err = i.AddFile("files/howdy", "howdy")
	require.Nil(t, err)
	require.Nil(t, i.Close())

	j, err := OpenImage(fsys, "dst.img")
	require.Nil(t, err)
	defer j.Close()
	for name, data := range testFiles() {
		content, err := j.ReadFile(name)
		require.Nil(t, err)
		require.Equal(t, data, content)
	}
	content, err := j.ReadFile("/files/howdy")
	require.Nil(t, err)
	require.Equal(t, []byte("howdy howdy howdy"), content)
}

func TestImageOpenMissing(t *testing.T) {
	_, err := OpenImage(afero.NewMemMapFs(), "nope.img")
	require.NotNil(t, err)
}

func TestImageOpenUnformatted(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := afero.WriteFile(fsys, "blank.img", make([]byte, 8*fatfs.BlockSize), 0600)
	require.Nil(t, err)
	_, err = OpenImage(fsys, "blank.img")
	require.ErrorIs(t, err, fatfs.ErrCorruptLayout)
}

func TestImageIsDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	i, err := CreateImage(fsys, "src.img", 32)
	require.Nil(t, err)
	defer i.Close()
	require.Nil(t, i.Mkdir("/EFI"))
	require.Nil(t, i.Mkdir("/EFI/BOOT"))
	require.Nil(t, i.FileSystem().CreateFile("/syslinux.cfg", []byte("default")))

	cases := map[string]bool{
		"/":              true,
		"/foo":           false,
		"foo/bar/baz":    false,
		"syslinux.cfg":   false,
		"syslinux.cfg/x": false,
		"EFI":            true,
		"EFI/foo":        false,
		"EFI/BOOT":       true,
		"EFI/BOOT/GROOT": false,
	}
	for name, want := range cases {
		ret, err := i.IsDir(name)
		require.Nil(t, err, name)
		require.Equal(t, want, ret, name)
	}
}

func TestImageImportExport(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTestFiles(t, fsys, "files")
	writeTestFiles(t, fsys, filepath.Join("files", "nested", "deeper"))

	i, err := CreateImage(fsys, "import.img", 64)
	require.Nil(t, err)
	defer i.Close()
	require.Nil(t, i.Import("files"))

	records, err := i.ScanFiles()
	require.Nil(t, err)
	for _, record := range records {
		log.Printf("%s dir=%v size=%d access=%s\n", record.Name, record.Dir, record.Size, record.Access)
	}
	require.Len(t, records, 8)

	require.Nil(t, i.Export("out"))
	for name, data := range testFiles() {
		for _, dir := range []string{"out", filepath.Join("out", "nested", "deeper")} {
			content, err := afero.ReadFile(fsys, filepath.Join(dir, name))
			require.Nil(t, err)
			require.Equal(t, data, content)
		}
	}
}

func TestImageAccessRights(t *testing.T) {
	fsys := afero.NewMemMapFs()
	i, err := CreateImage(fsys, "attr.img", 16)
	require.Nil(t, err)
	require.Nil(t, i.FileSystem().CreateFile("foo", []byte("x")))

	rights, err := i.GetAccessRights("foo")
	require.Nil(t, err)
	require.Equal(t, fatfs.DefaultAccess, rights)

	require.Nil(t, i.SetAccessRights("foo", fatfs.AccessRead|fatfs.AccessExecute))
	require.Nil(t, i.Close())

	i, err = OpenImage(fsys, "attr.img")
	require.Nil(t, err)
	defer i.Close()
	rights, err = i.GetAccessRights("foo")
	require.Nil(t, err)
	require.Equal(t, fatfs.AccessRead|fatfs.AccessExecute, rights)

	err = i.SetAccessRights("missing", fatfs.AccessRead)
	require.ErrorIs(t, err, fatfs.ErrNotFound)
}

func TestImageChecksum(t *testing.T) {
	fsys := afero.NewMemMapFs()
	i, err := CreateImage(fsys, "sum.img", 16)
	require.Nil(t, err)
	defer i.Close()
	data := bytes.Repeat([]byte("sum"), 2000)
	require.Nil(t, i.FileSystem().CreateFile("f", data))
	sum, err := i.Checksum("f")
	require.Nil(t, err)
	require.Equal(t, xxh3.Hash(data), sum)
}

func TestImageRewrite(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTestFiles(t, fsys, "files")
	writeTestFiles(t, fsys, filepath.Join("files", "sub"))

	src, err := CreateImage(fsys, "src.img", 128)
	require.Nil(t, err)
	require.Nil(t, src.Import("files"))
	require.Nil(t, src.FileSystem().Remove("/foo"))
	require.Nil(t, src.SetAccessRights("/sub/bar", fatfs.AccessRead))
	want, err := src.ScanFiles()
	require.Nil(t, err)
	require.Nil(t, src.Close())

	err = RewriteImage(fsys, "dst.img", "src.img", 32)
	require.Nil(t, err)

	dst, err := OpenImage(fsys, "dst.img")
	require.Nil(t, err)
	defer dst.Close()
	got, err := dst.ScanFiles()
	require.Nil(t, err)
	require.ElementsMatch(t, want, got)

	report, err := dst.Check()
	require.Nil(t, err)
	require.True(t, report.OK(), "%+v", report)
	// UsedBlocks counts the root block, which is not a data block
	require.Equal(t, 32-fat.FirstDataBlock, report.FreeBlocks+report.UsedBlocks-1)
}

func TestCheckImage(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "check.img")
	i, err := CreateImage(afero.NewOsFs(), filename, 16)
	require.Nil(t, err)
	require.Nil(t, i.FileSystem().CreateFile("a", make([]byte, 5000)))
	require.Nil(t, i.Close())

	report, err := CheckImage(filename)
	require.Nil(t, err)
	require.True(t, report.OK())
	require.Equal(t, 1, report.Files)
	require.Equal(t, 1, report.Directories)

	_, err = CheckImage(filepath.Join(t.TempDir(), "missing.img"))
	require.NotNil(t, err)
}
