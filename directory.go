package fatfs

import (
	"fmt"
	"strings"
)

// Kind distinguishes files from directories in an entry header.
type Kind uint8

const (
	KindFile      Kind = 0
	KindDirectory Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "dir"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// AccessRights is the rwx bitmask stored with every entry. It is
// recorded and changeable but never enforced.
type AccessRights uint8

const (
	AccessExecute AccessRights = 0x01
	AccessWrite   AccessRights = 0x02
	AccessRead    AccessRights = 0x04
	AccessAll                  = AccessRead | AccessWrite | AccessExecute
)

// DefaultAccess is given to every newly created file and directory.
const DefaultAccess = AccessRead | AccessWrite

func (a AccessRights) Valid() bool {
	return a&^AccessAll == 0
}

func (a AccessRights) String() string {
	b := []byte("---")
	if a&AccessRead != 0 {
		b[0] = 'r'
	}
	if a&AccessWrite != 0 {
		b[1] = 'w'
	}
	if a&AccessExecute != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// ParseAccessRights accepts either a single octal digit ("6") or an
// rwx string ("rw-").
func ParseAccessRights(s string) (AccessRights, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '7' {
		return AccessRights(s[0] - '0'), nil
	}
	if len(s) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAccessRights, s)
	}
	var a AccessRights
	for i, want := range []byte("rwx") {
		switch s[i] {
		case want:
			a |= AccessRights(4 >> i)
		case '-':
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidAccessRights, s)
		}
	}
	return a, nil
}

// EntryInfo describes a single member of a directory.
type EntryInfo struct {
	Name   string
	Size   uint32
	Kind   Kind
	Access AccessRights
	Block  uint16
}

func (e EntryInfo) IsDir() bool {
	return e.Kind == KindDirectory
}
