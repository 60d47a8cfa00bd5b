package image

import (
	"errors"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/rstms/fatfs"
	"github.com/rstms/fatfs/fat"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

// Debug enables tracing of image operations to the standard logger.
var Debug bool

func debugf(format string, args ...interface{}) {
	if Debug {
		log.Printf(format, args...)
	}
}

type FileRecord struct {
	Name   string
	Dir    bool
	Size   uint32
	Access fatfs.AccessRights
}

// Image is a FAT volume stored in a disk image file.
type Image struct {
	Filename string
	fsys     afero.Fs
	disk     *fatfs.FileDisk
	fs       *fat.FileSystem
}

func OpenImage(fsys afero.Fs, filename string) (*Image, error) {
	i := Image{Filename: filename, fsys: fsys}
	file, err := fsys.OpenFile(filename, os.O_RDWR, 0600)
	if err != nil {
		return nil, Fatal(err)
	}
	i.disk, err = fatfs.NewFileDisk(file)
	if err != nil {
		file.Close()
		return nil, Fatal(err)
	}
	i.fs, err = fat.New(i.disk)
	if err != nil {
		i.Close()
		return nil, Fatal(err)
	}
	debugf("opened %s: %d blocks\n", filename, i.disk.BlockCount())
	return &i, nil
}

// CreateImage creates filename holding blocks blocks and formats it.
func CreateImage(fsys afero.Fs, filename string, blocks int) (*Image, error) {
	i := Image{Filename: filename, fsys: fsys}
	var err error
	i.disk, err = fatfs.CreateFileDisk(fsys, filename, blocks)
	if err != nil {
		return nil, Fatal(err)
	}
	i.fs, err = fat.Format(i.disk)
	if err != nil {
		i.Close()
		return nil, Fatal(err)
	}
	debugf("created %s: %d blocks\n", filename, blocks)
	return &i, nil
}

func (i *Image) Close() error {
	if i.disk != nil {
		err := i.disk.Close()
		i.disk = nil
		if err != nil {
			return Fatal(err)
		}
	}
	return nil
}

// FileSystem returns the volume inside the image.
func (i *Image) FileSystem() *fat.FileSystem {
	return i.fs
}

func (i *Image) ScanFiles() ([]FileRecord, error) {
	records := []FileRecord{}
	err := i.fs.Walk(func(name string, info fatfs.EntryInfo) error {
		records = append(records, FileRecord{
			Name:   name,
			Dir:    info.IsDir(),
			Size:   info.Size,
			Access: info.Access,
		})
		return nil
	})
	if err != nil {
		return []FileRecord{}, Fatal(err)
	}
	return records, nil
}

// AddFile copies the host file srcPathname into the image as dstPathname.
func (i *Image) AddFile(dstPathname, srcPathname string) error {
	data, err := afero.ReadFile(i.fsys, srcPathname)
	if err != nil {
		return Fatal(err)
	}
	err = i.fs.CreateFile(dstPathname, data)
	if err != nil {
		return Fatal(err)
	}
	debugf("added %s (%d bytes) as %s\n", srcPathname, len(data), dstPathname)
	return nil
}

func (i *Image) IsDir(name string) (bool, error) {
	info, err := i.fs.Stat(name)
	switch {
	case errors.Is(err, fatfs.ErrNotFound), errors.Is(err, fatfs.ErrNotADirectory):
		return false, nil
	case err != nil:
		return false, Fatal(err)
	}
	return info.IsDir(), nil
}

func (i *Image) Mkdir(pathname string) error {
	exists, err := i.IsDir(pathname)
	if err != nil {
		return Fatal(err)
	}
	if exists {
		return Fatalf("directory exists: %s", pathname)
	}
	err = i.fs.Mkdir(pathname)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (i *Image) ReadFile(filename string) ([]byte, error) {
	data, err := i.fs.ReadFile(filename)
	if err != nil {
		return []byte{}, Fatal(err)
	}
	debugf("read %d bytes from %s\n", len(data), filename)
	return data, nil
}

// Checksum returns the xxh3 hash of a file's content.
func (i *Image) Checksum(filename string) (uint64, error) {
	data, err := i.ReadFile(filename)
	if err != nil {
		return 0, Fatal(err)
	}
	return xxh3.Hash(data), nil
}

// Import writes every file and directory below the host directory dir
// into the root of the image.
func (i *Image) Import(dir string) error {
	err := afero.Walk(i.fsys, dir, func(hostPath string, info os.FileInfo, err error) error {
		if err != nil {
			return Fatal(err)
		}
		if hostPath == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, hostPath)
		if err != nil {
			return Fatal(err)
		}
		dst := "/" + filepath.ToSlash(rel)
		debugf("import dir=%v dst=%s path=%s\n", info.IsDir(), dst, hostPath)
		if info.IsDir() {
			return i.Mkdir(dst)
		}
		return i.AddFile(dst, hostPath)
	})
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Export recreates the image's tree below the host directory dir.
func (i *Image) Export(dir string) error {
	records, err := i.ScanFiles()
	if err != nil {
		return Fatal(err)
	}
	err = i.fsys.MkdirAll(dir, 0700)
	if err != nil {
		return Fatal(err)
	}
	for _, record := range records {
		hostPath := filepath.Join(dir, filepath.FromSlash(record.Name))
		if record.Dir {
			if err := i.fsys.MkdirAll(hostPath, 0700); err != nil {
				return Fatal(err)
			}
			continue
		}
		data, err := i.ReadFile(record.Name)
		if err != nil {
			return Fatal(err)
		}
		if err := afero.WriteFile(i.fsys, hostPath, data, 0600); err != nil {
			return Fatal(err)
		}
		debugf("exported %s to %s\n", record.Name, hostPath)
	}
	return nil
}

func (i *Image) SetAccessRights(filename string, rights fatfs.AccessRights) error {
	err := i.fs.Chmod(filename, rights)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (i *Image) GetAccessRights(filename string) (fatfs.AccessRights, error) {
	info, err := i.fs.Stat(filename)
	if err != nil {
		return 0, Fatal(err)
	}
	return info.Access, nil
}

// Check verifies the consistency of the open volume.
func (i *Image) Check() (*fat.Report, error) {
	report, err := i.fs.Check()
	if err != nil {
		return nil, Fatal(err)
	}
	return report, nil
}

// CheckImage inspects the image at filename on the host file system
// without opening it for writing.
func CheckImage(filename string) (*fat.Report, error) {
	if !IsFile(filename) {
		return nil, Fatalf("image not found: %s", filename)
	}
	disk, err := fatfs.OpenMmapDisk(filename)
	if err != nil {
		return nil, Fatal(err)
	}
	defer disk.Close()
	volume, err := fat.New(disk)
	if err != nil {
		return nil, Fatal(err)
	}
	report, err := volume.Check()
	if err != nil {
		return nil, Fatal(err)
	}
	debugf("checked %s: %+v\n", path.Base(filename), report)
	return report, nil
}
