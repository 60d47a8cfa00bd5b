package fat

import (
	"fmt"
	"strings"

	"github.com/rstms/fatfs"
)

// FileSystem is the implementation of fatfs.FileSystem on a FAT
// formatted block device. It owns the allocation table and the working
// directory; callers serialize access.
type FileSystem struct {
	device   fatfs.BlockDevice
	fat      *FAT
	store    *Store
	resolver *Resolver

	cwd     uint16
	cwdPath []string
}

// ensure FileSystem implements fatfs.FileSystem
var _ fatfs.FileSystem = (*FileSystem)(nil)

// New returns a FileSystem for accessing a previously formatted device.
func New(device fatfs.BlockDevice) (*FileSystem, error) {
	fat, err := DecodeFAT(device)
	if err != nil {
		return nil, Fatal(err)
	}
	f := newFileSystem(device, fat)
	root, err := f.store.ReadEntry(RootBlock)
	if err != nil {
		return nil, Fatal(err)
	}
	if !root.IsDir() || root.FirstBlock != RootBlock || fat.Next(RootBlock) == Free {
		return nil, fmt.Errorf("%w: device is not formatted", fatfs.ErrCorruptLayout)
	}
	return f, nil
}

// Format creates an empty file system on device and returns it.
func Format(device fatfs.BlockDevice) (*FileSystem, error) {
	f := &FileSystem{device: device}
	if err := f.Format(); err != nil {
		return nil, Fatal(err)
	}
	return f, nil
}

func newFileSystem(device fatfs.BlockDevice, fat *FAT) *FileSystem {
	store := NewStore(device, fat)
	return &FileSystem{
		device:   device,
		fat:      fat,
		store:    store,
		resolver: NewResolver(store),
		cwd:      RootBlock,
	}
}

// Format writes an empty root directory and a fresh allocation table,
// then resets the working directory to the root.
func (f *FileSystem) Format() error {
	fat, err := NewFAT(f.device)
	if err != nil {
		return Fatal(err)
	}
	root := Entry{
		Name:       rootName,
		FirstBlock: RootBlock,
		Kind:       fatfs.KindDirectory,
		Access:     fatfs.DefaultAccess,
	}
	store := NewStore(f.device, fat)
	if err := store.writeChain(root, []uint16{RootBlock}, nil); err != nil {
		return Fatal(err)
	}
	if err := fat.WriteToDevice(); err != nil {
		return Fatal(err)
	}
	*f = *newFileSystem(f.device, fat)
	return nil
}

// FAT exposes the allocation table for inspection.
func (f *FileSystem) FAT() *FAT {
	return f.fat
}

func (f *FileSystem) workingDir() Entry {
	return Entry{FirstBlock: f.cwd, Kind: fatfs.KindDirectory}
}

// parse returns the parsed path, rewritten as a root path when it carries
// dot components.
func (f *FileSystem) parse(path string) (Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return p, Fatal(err)
	}
	if p.hasDots() {
		p = rootPath(p.absolute(f.cwdPath))
	}
	return p, nil
}

// locate resolves the directory holding the final component of path.
func (f *FileSystem) locate(path string) (Entry, string, error) {
	p, err := f.parse(path)
	if err != nil {
		return Entry{}, "", Fatal(err)
	}
	parent, err := f.resolver.ResolveParent(p, f.workingDir())
	if err != nil {
		return Entry{}, "", Fatal(err)
	}
	return parent, p.Final, nil
}

// lookup returns the entry named by path along with its parent.
func (f *FileSystem) lookup(path string) (Entry, Entry, error) {
	parent, final, err := f.locate(path)
	if err != nil {
		return Entry{}, Entry{}, Fatal(err)
	}
	entry, err := f.resolver.Lookup(parent, final)
	if err != nil {
		return Entry{}, Entry{}, Fatal(err)
	}
	return entry, parent, nil
}

// create makes a new entry named by the final component of path.
func (f *FileSystem) create(path string, kind fatfs.Kind, access fatfs.AccessRights, content []byte) error {
	parent, final, err := f.locate(path)
	if err != nil {
		return Fatal(err)
	}
	name, err := ParseName(final)
	if err != nil {
		return Fatal(err)
	}
	if !parent.IsDir() {
		return fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, parent.Name)
	}
	entry := Entry{Name: name, Kind: kind, Access: access}
	_, err = f.store.CreateEntry(entry, content, &parent)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (f *FileSystem) CreateFile(path string, content []byte) error {
	return f.create(path, fatfs.KindFile, fatfs.DefaultAccess, content)
}

func (f *FileSystem) Mkdir(path string) error {
	return f.create(path, fatfs.KindDirectory, fatfs.DefaultAccess, nil)
}

func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	entry, _, err := f.lookup(path)
	if err != nil {
		return nil, Fatal(err)
	}
	content, err := f.store.ReadContent(entry)
	if err != nil {
		return nil, Fatal(err)
	}
	return content, nil
}

func (f *FileSystem) Stat(path string) (fatfs.EntryInfo, error) {
	entry, _, err := f.lookup(path)
	if err != nil {
		return fatfs.EntryInfo{}, Fatal(err)
	}
	return entry.Info(), nil
}

func (f *FileSystem) List() ([]fatfs.EntryInfo, error) {
	return f.ListPath(".")
}

// ListPath lists the directory named by path, or describes the file it
// names.
func (f *FileSystem) ListPath(path string) ([]fatfs.EntryInfo, error) {
	entry, _, err := f.lookup(path)
	if err != nil {
		return nil, Fatal(err)
	}
	if !entry.IsDir() {
		return []fatfs.EntryInfo{entry.Info()}, nil
	}
	return f.dir(entry, "").Entries()
}

// destination works out where src should land for a copy or move to
// dst: into dst itself when it is an existing directory, otherwise as a
// new member named by dst's final component.
func (f *FileSystem) destination(dst string, src Entry) (Entry, Name, error) {
	parent, final, err := f.locate(dst)
	if err != nil {
		return Entry{}, "", Fatal(err)
	}
	if final == "" {
		if !parent.IsDir() {
			return Entry{}, "", fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, dst)
		}
		return parent, src.Name, nil
	}
	existing, err := f.resolver.Lookup(parent, final)
	switch {
	case err == nil && existing.FirstBlock == src.FirstBlock:
		return parent, src.Name, nil
	case err == nil && existing.IsDir():
		return existing, src.Name, nil
	case err == nil:
		return Entry{}, "", fmt.Errorf("%w: %s", fatfs.ErrAlreadyExists, dst)
	case !isNotFound(err):
		return Entry{}, "", Fatal(err)
	}
	name, err := ParseName(final)
	if err != nil {
		return Entry{}, "", Fatal(err)
	}
	return parent, name, nil
}

// Copy duplicates the file src as dst, keeping its access rights.
func (f *FileSystem) Copy(src, dst string) error {
	entry, _, err := f.lookup(src)
	if err != nil {
		return Fatal(err)
	}
	content, err := f.store.ReadContent(entry)
	if err != nil {
		return Fatal(err)
	}
	parent, name, err := f.destination(dst, entry)
	if err != nil {
		return Fatal(err)
	}
	copied := Entry{Name: name, Kind: fatfs.KindFile, Access: entry.Access}
	_, err = f.store.CreateEntry(copied, content, &parent)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Move renames src to dst, or moves it into dst when dst is an existing
// directory. Content is not copied; only child records change.
func (f *FileSystem) Move(src, dst string) error {
	srcParent, final, err := f.locate(src)
	if err != nil {
		return Fatal(err)
	}
	if final == "" {
		return fmt.Errorf("%w: cannot move %s", fatfs.ErrInvalidPath, src)
	}
	entry, err := f.resolver.Lookup(srcParent, final)
	if err != nil {
		return Fatal(err)
	}
	dstParent, name, err := f.destination(dst, entry)
	if err != nil {
		return Fatal(err)
	}
	if dstParent.FirstBlock == srcParent.FirstBlock && name == entry.Name {
		return nil
	}
	if entry.IsDir() {
		inside, err := f.contains(entry, dstParent.FirstBlock)
		if err != nil {
			return Fatal(err)
		}
		if inside {
			return fmt.Errorf("%w: cannot move %s into itself", fatfs.ErrInvalidPath, src)
		}
		busy, err := f.contains(entry, f.cwd)
		if err != nil {
			return Fatal(err)
		}
		if busy {
			return fmt.Errorf("%w: %s", fatfs.ErrBusy, src)
		}
	}
	_, err = f.store.Link(dstParent, Child{Name: name, Block: entry.FirstBlock})
	if err != nil {
		return Fatal(err)
	}
	_, _, err = f.store.Unlink(srcParent, entry.Name)
	if err != nil {
		return Fatal(err)
	}
	if name != entry.Name {
		entry.Name = name
		if err := f.store.UpdateEntry(entry); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

// contains reports whether block is dir itself or lies beneath it.
func (f *FileSystem) contains(dir Entry, block uint16) (bool, error) {
	if dir.FirstBlock == block {
		return true, nil
	}
	children, err := f.store.ReadChildren(dir)
	if err != nil {
		return false, Fatal(err)
	}
	for _, child := range children {
		entry, err := f.store.ReadEntry(child.Block)
		if err != nil {
			return false, Fatal(err)
		}
		if !entry.IsDir() {
			continue
		}
		found, err := f.contains(entry, block)
		if err != nil {
			return false, Fatal(err)
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// Append adds the content of file src to the end of file dst. src is
// unchanged.
func (f *FileSystem) Append(src, dst string) error {
	source, _, err := f.lookup(src)
	if err != nil {
		return Fatal(err)
	}
	extra, err := f.store.ReadContent(source)
	if err != nil {
		return Fatal(err)
	}
	target, _, err := f.lookup(dst)
	if err != nil {
		return Fatal(err)
	}
	content, err := f.store.ReadContent(target)
	if err != nil {
		return Fatal(err)
	}
	_, err = f.store.WriteContent(target, append(content, extra...))
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Chdir makes the directory named by path the working directory.
func (f *FileSystem) Chdir(path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return Fatal(err)
	}
	entry, _, err := f.lookup(path)
	if err != nil {
		return Fatal(err)
	}
	if !entry.IsDir() {
		return fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, path)
	}
	f.cwd = entry.FirstBlock
	f.cwdPath = p.absolute(f.cwdPath)
	return nil
}

// Pwd returns the absolute path of the working directory.
func (f *FileSystem) Pwd() string {
	return "/" + strings.Join(f.cwdPath, "/")
}

// Remove deletes the file or empty directory named by path and frees its
// blocks.
func (f *FileSystem) Remove(path string) error {
	parent, final, err := f.locate(path)
	if err != nil {
		return Fatal(err)
	}
	if final == "" {
		return fmt.Errorf("%w: cannot remove %s", fatfs.ErrInvalidPath, path)
	}
	entry, err := f.resolver.Lookup(parent, final)
	if err != nil {
		return Fatal(err)
	}
	if entry.FirstBlock == f.cwd {
		return fmt.Errorf("%w: %s is the working directory", fatfs.ErrBusy, path)
	}
	if err := f.store.RemoveEntry(entry, &parent); err != nil {
		return Fatal(err)
	}
	return nil
}

// Chmod stores new access rights for the entry named by path.
func (f *FileSystem) Chmod(path string, rights fatfs.AccessRights) error {
	if !rights.Valid() {
		return fmt.Errorf("%w: %#o", fatfs.ErrInvalidAccessRights, uint8(rights))
	}
	entry, _, err := f.lookup(path)
	if err != nil {
		return Fatal(err)
	}
	entry.Access = rights
	if err := f.store.UpdateEntry(entry); err != nil {
		return Fatal(err)
	}
	return nil
}

// WalkFunc is called for every entry below the root, parents first.
type WalkFunc func(path string, info fatfs.EntryInfo) error

// Walk visits the whole tree depth first.
func (f *FileSystem) Walk(fn WalkFunc) error {
	root, err := f.RootDir()
	if err != nil {
		return Fatal(err)
	}
	return root.walk(fn)
}
