package fatfs

import "errors"

var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrNotFound            = errors.New("not found")
	ErrNotADirectory       = errors.New("not a directory")
	ErrNotAFile            = errors.New("not a file")
	ErrAlreadyExists       = errors.New("already exists")
	ErrDiskFull            = errors.New("disk full")
	ErrNameTooLong         = errors.New("name too long")
	ErrCorruptLayout       = errors.New("corrupt layout")
	ErrDirectoryNotEmpty   = errors.New("directory not empty")
	ErrInvalidAccessRights = errors.New("invalid access rights")
	ErrReadOnly            = errors.New("read-only device")
	ErrBusy                = errors.New("directory in use")
)

var taxonomy = []error{
	ErrInvalidPath,
	ErrNotFound,
	ErrNotADirectory,
	ErrNotAFile,
	ErrAlreadyExists,
	ErrDiskFull,
	ErrNameTooLong,
	ErrCorruptLayout,
	ErrDirectoryNotEmpty,
	ErrInvalidAccessRights,
	ErrReadOnly,
	ErrBusy,
}

// IsFSError reports whether err belongs to the file system's own error
// taxonomy, as opposed to a device or host failure.
func IsFSError(err error) bool {
	for _, target := range taxonomy {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
