package fat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rstms/fatfs"
)

const (
	RootBlock      = 0
	FATBlock       = 1
	FirstDataBlock = 2

	// SlotCount is the number of int16 slots that fit in the FAT block.
	SlotCount = fatfs.BlockSize / 2
)

// FAT slot markers; any other value is the index of the next block.
const (
	Free int16 = 0
	EOF  int16 = -1
)

// FAT is the in-memory copy of the allocation table. Every mutating call
// writes the table back to the device before returning.
type FAT struct {
	device fatfs.BlockDevice
	slots  []int16
	limit  int
}

// NewFAT returns an empty table for device with the root and FAT blocks
// reserved. Nothing is written until WriteToDevice.
func NewFAT(device fatfs.BlockDevice) (*FAT, error) {
	f := &FAT{
		device: device,
		slots:  make([]int16, SlotCount),
		limit:  min(device.BlockCount(), SlotCount),
	}
	if f.limit <= FirstDataBlock {
		return nil, Fatalf("device has %d blocks, need at least %d", device.BlockCount(), FirstDataBlock+1)
	}
	f.slots[RootBlock] = EOF
	f.slots[FATBlock] = EOF
	return f, nil
}

// DecodeFAT loads the allocation table stored on device.
func DecodeFAT(device fatfs.BlockDevice) (*FAT, error) {
	f, err := NewFAT(device)
	if err != nil {
		return nil, Fatal(err)
	}
	if err := f.load(); err != nil {
		return nil, Fatal(err)
	}
	return f, nil
}

func (f *FAT) load() error {
	block, err := f.device.ReadBlock(FATBlock)
	if err != nil {
		return Fatal(err)
	}
	for i := range f.slots {
		f.slots[i] = int16(binary.LittleEndian.Uint16(block[i*2:]))
	}
	return nil
}

func (f *FAT) encode() []byte {
	block := make([]byte, fatfs.BlockSize)
	for i, slot := range f.slots {
		binary.LittleEndian.PutUint16(block[i*2:], uint16(slot))
	}
	return block
}

// WriteToDevice stores the table in the FAT block, then reloads it and
// confirms the device returned what was written.
func (f *FAT) WriteToDevice() error {
	block := f.encode()
	if err := f.device.WriteBlock(FATBlock, block); err != nil {
		return Fatal(err)
	}
	if err := f.load(); err != nil {
		return Fatal(err)
	}
	if !bytes.Equal(block, f.encode()) {
		return fmt.Errorf("%w: FAT block read back differs from written table", fatfs.ErrCorruptLayout)
	}
	return nil
}

// Limit is one past the highest allocatable block index.
func (f *FAT) Limit() int {
	return f.limit
}

// Next returns the slot following block: the next index in the chain,
// EOF, or Free.
func (f *FAT) Next(block uint16) int16 {
	if int(block) >= len(f.slots) {
		return Free
	}
	return f.slots[block]
}

// Slots returns a copy of the table.
func (f *FAT) Slots() []int16 {
	return append([]int16(nil), f.slots...)
}

// FreeCount is the number of allocatable blocks not in any chain.
func (f *FAT) FreeCount() int {
	count := 0
	for i := FirstDataBlock; i < f.limit; i++ {
		if f.slots[i] == Free {
			count++
		}
	}
	return count
}

func (f *FAT) dataBlock(index int) bool {
	return index >= FirstDataBlock && index < f.limit
}

// Chain returns the blocks of the chain starting at first, in order. The
// root directory chain is the only one allowed to start below
// FirstDataBlock.
func (f *FAT) Chain(first uint16) ([]uint16, error) {
	if int(first) != RootBlock && !f.dataBlock(int(first)) {
		return nil, fmt.Errorf("%w: chain starts at block %d outside [%d,%d)", fatfs.ErrCorruptLayout, first, FirstDataBlock, f.limit)
	}
	return f.walk(first)
}

func (f *FAT) walk(first uint16) ([]uint16, error) {
	chain := []uint16{first}
	block := first
	for {
		next := f.slots[block]
		switch {
		case next == EOF:
			return chain, nil
		case next == Free:
			return nil, fmt.Errorf("%w: free slot %d inside chain starting at %d", fatfs.ErrCorruptLayout, block, first)
		case !f.dataBlock(int(next)):
			return nil, fmt.Errorf("%w: block %d links to %d outside [%d,%d)", fatfs.ErrCorruptLayout, block, next, FirstDataBlock, f.limit)
		}
		if len(chain) >= f.limit {
			return nil, fmt.Errorf("%w: chain starting at %d does not terminate", fatfs.ErrCorruptLayout, first)
		}
		block = uint16(next)
		chain = append(chain, block)
	}
}

// alloc claims count free blocks, lowest index first, linked in scan
// order and terminated by EOF. The table is unchanged on failure.
func (f *FAT) alloc(count int) ([]uint16, error) {
	if count < 1 {
		return nil, Fatalf("invalid allocation count: %d", count)
	}
	blocks := make([]uint16, 0, count)
	for i := FirstDataBlock; i < f.limit && len(blocks) < count; i++ {
		if f.slots[i] == Free {
			blocks = append(blocks, uint16(i))
		}
	}
	if len(blocks) < count {
		return nil, fmt.Errorf("%w: need %d blocks, %d free", fatfs.ErrDiskFull, count, len(blocks))
	}
	for i, block := range blocks {
		if i == len(blocks)-1 {
			f.slots[block] = EOF
		} else {
			f.slots[block] = int16(blocks[i+1])
		}
	}
	return blocks, nil
}

// Alloc claims a new chain of count blocks and returns its blocks; the
// first is the chain head.
func (f *FAT) Alloc(count int) ([]uint16, error) {
	blocks, err := f.alloc(count)
	if err != nil {
		return nil, Fatal(err)
	}
	if err := f.WriteToDevice(); err != nil {
		return nil, Fatal(err)
	}
	return blocks, nil
}

// Extend appends count new blocks after last, which must end its chain.
func (f *FAT) Extend(last uint16, count int) ([]uint16, error) {
	if int(last) >= f.limit || f.slots[last] != EOF {
		return nil, fmt.Errorf("%w: block %d is not the end of a chain", fatfs.ErrCorruptLayout, last)
	}
	blocks, err := f.alloc(count)
	if err != nil {
		return nil, Fatal(err)
	}
	f.slots[last] = int16(blocks[0])
	if err := f.WriteToDevice(); err != nil {
		return nil, Fatal(err)
	}
	return blocks, nil
}

// Free releases every block of the chain starting at first. A broken
// chain is reported before any slot is cleared.
func (f *FAT) Free(first uint16) error {
	if !f.dataBlock(int(first)) {
		return fmt.Errorf("%w: cannot free block %d outside [%d,%d)", fatfs.ErrCorruptLayout, first, FirstDataBlock, f.limit)
	}
	if f.slots[first] == Free {
		return fmt.Errorf("%w: block %d is already free", fatfs.ErrCorruptLayout, first)
	}
	chain, err := f.walk(first)
	if err != nil {
		return Fatal(err)
	}
	for _, block := range chain {
		f.slots[block] = Free
	}
	if err := f.WriteToDevice(); err != nil {
		return Fatal(err)
	}
	return nil
}

// Truncate frees every block after last and makes last the chain end.
func (f *FAT) Truncate(last uint16) error {
	if int(last) >= f.limit {
		return fmt.Errorf("%w: block %d outside the table", fatfs.ErrCorruptLayout, last)
	}
	next := f.slots[last]
	if next == EOF {
		return nil
	}
	if next == Free || !f.dataBlock(int(next)) {
		return fmt.Errorf("%w: block %d links to %d", fatfs.ErrCorruptLayout, last, next)
	}
	tail, err := f.walk(uint16(next))
	if err != nil {
		return Fatal(err)
	}
	for _, block := range tail {
		f.slots[block] = Free
	}
	f.slots[last] = EOF
	if err := f.WriteToDevice(); err != nil {
		return Fatal(err)
	}
	return nil
}
