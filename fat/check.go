package fat

import (
	"fmt"
	"path"

	"github.com/rstms/fatfs"
)

// Report is the result of a consistency check.
type Report struct {
	Files       int
	Directories int
	UsedBlocks  int
	FreeBlocks  int
	// Leaked lists blocks marked in use by the FAT that no entry reaches.
	Leaked   []uint16
	Problems []string
}

func (r *Report) OK() bool {
	return len(r.Leaked) == 0 && len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

type checker struct {
	fs     *FileSystem
	report *Report
	owner  map[uint16]string
}

// Check walks every entry reachable from the root and verifies the FAT
// invariants: each chain ends in EOF, no block belongs to two chains,
// sizes fit their chains, and child tables are well formed with unique
// names. It never writes to the device.
func (f *FileSystem) Check() (*Report, error) {
	c := &checker{
		fs:     f,
		report: &Report{},
		owner:  map[uint16]string{},
	}
	root, err := f.store.ReadEntry(RootBlock)
	if err != nil {
		return nil, Fatal(err)
	}
	if err := c.visit("/", root); err != nil {
		return nil, Fatal(err)
	}
	for i := FirstDataBlock; i < f.fat.Limit(); i++ {
		block := uint16(i)
		if f.fat.Next(block) == Free {
			c.report.FreeBlocks++
			continue
		}
		if _, ok := c.owner[block]; !ok {
			c.report.Leaked = append(c.report.Leaked, block)
		}
	}
	c.report.UsedBlocks = len(c.owner)
	return c.report, nil
}

func (c *checker) visit(entryPath string, entry Entry) error {
	if entry.IsDir() {
		c.report.Directories++
	} else {
		c.report.Files++
	}
	chain, err := c.fs.fat.Chain(entry.FirstBlock)
	if err != nil {
		c.report.problem("%s: %v", entryPath, err)
		return nil
	}
	for _, block := range chain {
		if other, ok := c.owner[block]; ok {
			c.report.problem("%s: block %d already used by %s", entryPath, block, other)
			return nil
		}
		c.owner[block] = entryPath
	}
	if want := BlocksNeeded(int(entry.Size)); want != len(chain) {
		c.report.problem("%s: size %d needs %d blocks, chain has %d", entryPath, entry.Size, want, len(chain))
		return nil
	}
	if !entry.IsDir() {
		return nil
	}
	if entry.Size%ChildSize != 0 {
		c.report.problem("%s: child table size %d is not a multiple of %d", entryPath, entry.Size, ChildSize)
		return nil
	}
	children, err := c.fs.store.ReadChildren(entry)
	if err != nil {
		if fatfs.IsFSError(err) {
			c.report.problem("%s: %v", entryPath, err)
			return nil
		}
		return Fatal(err)
	}
	seen := map[Name]bool{}
	for _, child := range children {
		childPath := path.Join(entryPath, string(child.Name))
		if seen[child.Name] {
			c.report.problem("%s: duplicate name", childPath)
			continue
		}
		seen[child.Name] = true
		if child.Block < FirstDataBlock || int(child.Block) >= c.fs.fat.Limit() {
			c.report.problem("%s: record points at block %d", childPath, child.Block)
			continue
		}
		member, err := c.fs.store.ReadEntry(child.Block)
		if err != nil {
			return Fatal(err)
		}
		if member.Name != child.Name {
			c.report.problem("%s: header names %q", childPath, member.Name)
		}
		if member.FirstBlock != child.Block {
			c.report.problem("%s: header first block %d, record %d", childPath, member.FirstBlock, child.Block)
			continue
		}
		if err := c.visit(childPath, member); err != nil {
			return Fatal(err)
		}
	}
	return nil
}
