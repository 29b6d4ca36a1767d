package format

const (
	// MaxBufferSize caps the size of a single encoded record.
	// Larger buffers are rejected by both engines.
	MaxBufferSize = 1 << 30

	// MaxObjectArraySize caps the element count of object arrays and maps,
	// so a corrupted count cannot trigger a huge allocation.
	MaxObjectArraySize = 1 << 20

	// DoubleBufferLimit bounds the extra doubling step of the encoder's
	// high-water-mark growth heuristic.
	DoubleBufferLimit = 1 << 22

	// TrimSizeLimit is the largest nested-record payload that gets its
	// reserved 32-bit length prefix trimmed down to a single byte.
	// Moving more bytes than this to reclaim 3 is not worth it, and a small
	// limit stops the move from compounding through deep recursion.
	TrimSizeLimit = 127

	// NullPackable marks a null element in a record-array slot.
	NullPackable = uint16(0xFFFF)

	// MaxEnumValue is the largest value an enum array element may carry.
	MaxEnumValue = 255
)
