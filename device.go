package fatfs

const (
	// BlockSize is the fixed size of every block on the device.
	BlockSize = 4096
	// AttributeSize is the entry header carried at the start of each block.
	AttributeSize = 64
	// ContentSize is the payload capacity of a block after its header.
	ContentSize = BlockSize - AttributeSize
)

// BlockDevice is a fixed-size array of BlockSize blocks. A read after a
// write to the same index returns exactly the written data.
type BlockDevice interface {
	ReadBlock(index int) ([]byte, error)
	WriteBlock(index int, block []byte) error
	BlockCount() int
}

func checkBlock(device BlockDevice, index, size int) error {
	if index < 0 || index >= device.BlockCount() {
		return Fatalf("block index %d out of range [0,%d)", index, device.BlockCount())
	}
	if size != BlockSize {
		return Fatalf("block size mismatch; expected %d, got %d", BlockSize, size)
	}
	return nil
}
