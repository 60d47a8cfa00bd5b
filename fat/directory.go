package fat

import (
	"errors"
	"fmt"
	"path"

	"github.com/rstms/fatfs"
)

// Directory is a view of one directory on the volume together with the
// absolute path it was reached by.
type Directory struct {
	fs    *FileSystem
	entry Entry
	path  string
}

// DirectoryEntry is a single member of a Directory.
type DirectoryEntry struct {
	dir   *Directory
	entry Entry
}

func isNotFound(err error) bool {
	return errors.Is(err, fatfs.ErrNotFound)
}

func (f *FileSystem) dir(entry Entry, dirPath string) *Directory {
	return &Directory{fs: f, entry: entry, path: dirPath}
}

// RootDir returns the single root directory.
func (f *FileSystem) RootDir() (*Directory, error) {
	root, err := f.store.ReadEntry(RootBlock)
	if err != nil {
		return nil, Fatal(err)
	}
	return f.dir(root, "/"), nil
}

func (d *Directory) Path() string {
	return d.path
}

func (d *Directory) Name() string {
	return string(d.entry.Name)
}

// Entries returns the members of d in child table order.
func (d *Directory) Entries() ([]fatfs.EntryInfo, error) {
	members, err := d.members()
	if err != nil {
		return nil, Fatal(err)
	}
	result := make([]fatfs.EntryInfo, 0, len(members))
	for _, member := range members {
		result = append(result, member.Info())
	}
	return result, nil
}

func (d *Directory) members() ([]*DirectoryEntry, error) {
	children, err := d.fs.store.ReadChildren(d.entry)
	if err != nil {
		return nil, Fatal(err)
	}
	result := make([]*DirectoryEntry, 0, len(children))
	for _, child := range children {
		entry, err := d.fs.store.ReadEntry(child.Block)
		if err != nil {
			return nil, Fatal(err)
		}
		result = append(result, &DirectoryEntry{dir: d, entry: entry})
	}
	return result, nil
}

// Entry returns the member called name, or nil when there is none.
func (d *Directory) Entry(name string) (*DirectoryEntry, error) {
	entry, err := d.fs.resolver.Lookup(d.entry, name)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, Fatal(err)
	}
	return &DirectoryEntry{dir: d, entry: entry}, nil
}

func (d *Directory) walk(fn WalkFunc) error {
	members, err := d.members()
	if err != nil {
		return Fatal(err)
	}
	for _, member := range members {
		memberPath := path.Join(d.path, member.Name())
		if err := fn(memberPath, member.Info()); err != nil {
			return err
		}
		if !member.IsDir() {
			continue
		}
		sub, err := member.Dir()
		if err != nil {
			return Fatal(err)
		}
		if err := sub.walk(fn); err != nil {
			return err
		}
	}
	return nil
}

func (e *DirectoryEntry) Name() string {
	return string(e.entry.Name)
}

func (e *DirectoryEntry) IsDir() bool {
	return e.entry.IsDir()
}

func (e *DirectoryEntry) Info() fatfs.EntryInfo {
	return e.entry.Info()
}

func (e *DirectoryEntry) Dir() (*Directory, error) {
	if !e.IsDir() {
		return nil, fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, e.Name())
	}
	return e.dir.fs.dir(e.entry, path.Join(e.dir.path, e.Name())), nil
}

// Content returns the bytes of a file entry.
func (e *DirectoryEntry) Content() ([]byte, error) {
	content, err := e.dir.fs.store.ReadContent(e.entry)
	if err != nil {
		return nil, Fatal(err)
	}
	return content, nil
}
