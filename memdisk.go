package fatfs

// MemoryDisk is a BlockDevice held entirely in memory.
type MemoryDisk struct {
	blocks [][]byte
}

// ensure MemoryDisk implements BlockDevice
var _ BlockDevice = (*MemoryDisk)(nil)

func NewMemoryDisk(count int) *MemoryDisk {
	d := &MemoryDisk{blocks: make([][]byte, count)}
	for i := range d.blocks {
		d.blocks[i] = make([]byte, BlockSize)
	}
	return d
}

func (d *MemoryDisk) ReadBlock(index int) ([]byte, error) {
	if err := checkBlock(d, index, BlockSize); err != nil {
		return nil, err
	}
	return append([]byte(nil), d.blocks[index]...), nil
}

func (d *MemoryDisk) WriteBlock(index int, block []byte) error {
	if err := checkBlock(d, index, len(block)); err != nil {
		return err
	}
	copy(d.blocks[index], block)
	return nil
}

func (d *MemoryDisk) BlockCount() int {
	return len(d.blocks)
}
