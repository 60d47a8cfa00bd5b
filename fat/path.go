package fat

import (
	"fmt"
	"strings"

	"github.com/rstms/fatfs"
)

// Origin selects the directory a path is resolved from.
type Origin uint8

const (
	OriginCurrent Origin = iota
	OriginRoot
)

// Path is a parsed slash separated path: the directories to walk and the
// final component the operation acts on.
type Path struct {
	Origin Origin
	Dirs   []string
	Final  string
}

// ParsePath splits s on '/'. A leading '/' anchors the path at the root.
// The last component, possibly empty when s ends in '/', becomes Final.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("%w: empty path", fatfs.ErrInvalidPath)
	}
	p := Path{Origin: OriginCurrent}
	if strings.HasPrefix(s, "/") {
		p.Origin = OriginRoot
		s = s[1:]
	}
	components := strings.Split(s, "/")
	p.Dirs = components[:len(components)-1]
	p.Final = components[len(components)-1]
	return p, nil
}

func (p Path) components() []string {
	return append(append([]string{}, p.Dirs...), p.Final)
}

func (p Path) String() string {
	s := strings.Join(p.components(), "/")
	if p.Origin == OriginRoot {
		return "/" + s
	}
	return s
}

func (p Path) hasDots() bool {
	for _, c := range p.components() {
		if c == "." || c == ".." {
			return true
		}
	}
	return false
}

// absolute returns the components of p as seen from the root, given the
// components of the working directory. Dot components are collapsed and a
// trailing empty component is dropped.
func (p Path) absolute(cwd []string) []string {
	var out []string
	if p.Origin == OriginCurrent {
		out = append(out, cwd...)
	}
	components := p.components()
	if components[len(components)-1] == "" {
		components = components[:len(components)-1]
	}
	for _, c := range components {
		switch c {
		case ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rootPath(components []string) Path {
	if len(components) == 0 {
		return Path{Origin: OriginRoot}
	}
	return Path{
		Origin: OriginRoot,
		Dirs:   components[:len(components)-1],
		Final:  components[len(components)-1],
	}
}

// Resolver walks directories through a Store.
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// child finds the record called name in directory dir.
func (r *Resolver) child(dir Entry, name string) (Child, bool, error) {
	children, err := r.store.ReadChildren(dir)
	if err != nil {
		return Child{}, false, Fatal(err)
	}
	i := findChild(children, Name(name))
	if i < 0 {
		return Child{}, false, nil
	}
	return children[i], true, nil
}

// ResolveParent walks p.Dirs starting at the root or at cwd and returns
// the directory reached. The returned entry is the parent of p.Final; its
// kind is not checked again here.
func (r *Resolver) ResolveParent(p Path, cwd Entry) (Entry, error) {
	start := cwd.FirstBlock
	if p.Origin == OriginRoot {
		start = RootBlock
	}
	dir, err := r.store.ReadEntry(start)
	if err != nil {
		return Entry{}, Fatal(err)
	}
	for _, name := range p.Dirs {
		child, ok, err := r.child(dir, name)
		if err != nil {
			return Entry{}, Fatal(err)
		}
		if !ok {
			return Entry{}, fmt.Errorf("%w: %s", fatfs.ErrNotFound, name)
		}
		next, err := r.store.ReadEntry(child.Block)
		if err != nil {
			return Entry{}, Fatal(err)
		}
		if !next.IsDir() {
			return Entry{}, fmt.Errorf("%w: %s", fatfs.ErrNotADirectory, name)
		}
		dir = next
	}
	return dir, nil
}

// Lookup returns the member of parent called name. An empty name refers
// to parent itself.
func (r *Resolver) Lookup(parent Entry, name string) (Entry, error) {
	if name == "" {
		return parent, nil
	}
	child, ok, err := r.child(parent, name)
	if err != nil {
		return Entry{}, Fatal(err)
	}
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", fatfs.ErrNotFound, name)
	}
	entry, err := r.store.ReadEntry(child.Block)
	if err != nil {
		return Entry{}, Fatal(err)
	}
	return entry, nil
}
