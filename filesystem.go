package fatfs

// A FileSystem provides access to a tree hierarchy of directories
// and files stored on a single block device.
type FileSystem interface {
	// Format discards all content and creates an empty root directory.
	Format() error
	CreateFile(path string, content []byte) error
	ReadFile(path string) ([]byte, error)
	// List returns the members of the working directory.
	List() ([]EntryInfo, error)
	ListPath(path string) ([]EntryInfo, error)
	Stat(path string) (EntryInfo, error)
	Copy(src, dst string) error
	Move(src, dst string) error
	Append(src, dst string) error
	Mkdir(path string) error
	Chdir(path string) error
	Pwd() string
	Remove(path string) error
	Chmod(path string, rights AccessRights) error
}
