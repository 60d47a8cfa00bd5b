package fat

import (
	"fmt"
	"strings"

	"github.com/rstms/fatfs"
)

// NameSize is the width of the name field in entry headers and child
// records.
const NameSize = 56

// Name is an entry name known to fit the on-disk name field.
type Name string

// rootName is stored in the root directory header.
const rootName Name = "/"

// ParseName validates s as the name of a directory member.
func ParseName(s string) (Name, error) {
	switch {
	case s == "" || s == "." || s == "..":
		return "", fmt.Errorf("%w: invalid name %q", fatfs.ErrInvalidPath, s)
	case strings.ContainsAny(s, "/\x00"):
		return "", fmt.Errorf("%w: invalid character in name %q", fatfs.ErrInvalidPath, s)
	case len(s) > NameSize:
		return "", fmt.Errorf("%w: %q is %d bytes, limit %d", fatfs.ErrNameTooLong, s, len(s), NameSize)
	}
	return Name(s), nil
}

func (n Name) String() string {
	return string(n)
}

func putName(dst []byte, name Name) error {
	if len(name) > NameSize {
		return fmt.Errorf("%w: %q", fatfs.ErrNameTooLong, string(name))
	}
	n := copy(dst[:NameSize], name)
	clear(dst[n:NameSize])
	return nil
}

func getName(src []byte) Name {
	field := src[:NameSize]
	if i := strings.IndexByte(string(field), 0); i >= 0 {
		field = field[:i]
	}
	return Name(field)
}
