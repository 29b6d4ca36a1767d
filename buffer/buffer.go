// Package buffer implements the byte buffer underlying the packrec engines.
//
// A Buffer is a window over a caller-owned byte slice with a movable position
// cursor and a fixed limit. All multi-byte values are little-endian, the
// packrec wire order.
//
// Reads are bounds-checked and return errs.ErrOutOfBound when they would
// cross the limit. Writes are unchecked: the encoder grows the underlying
// slice before writing, so a write within an encode operation cannot fail.
// Growth policy lives in the encoder, not here.
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/packrec/errs"
)

// Buffer is a random-access byte window with a position cursor.
// The fields are exported for the engines; most callers only meet a Buffer
// through the custom-field interfaces of the encoder and decoder.
type Buffer struct {
	// B is the underlying byte slice. Valid window is [0, Limit).
	B []byte

	// Position is the cursor for relative reads and writes.
	Position int

	// Limit is the exclusive upper bound of the window.
	Limit int
}

// New creates a Buffer over length bytes of b starting at offset.
func New(b []byte, offset, length int) *Buffer {
	return &Buffer{B: b, Position: offset, Limit: offset + length}
}

// HasRemaining reports whether the cursor is before the limit.
func (b *Buffer) HasRemaining() bool {
	return b.Position < b.Limit
}

// CheckBound reports errs.ErrOutOfBound when [offset, offset+n) crosses the limit.
func (b *Buffer) CheckBound(offset, n int) error {
	if n < 0 || offset+n > b.Limit {
		return errs.ErrOutOfBound
	}

	return nil
}

// WriteUint8 writes one byte at the cursor.
func (b *Buffer) WriteUint8(x byte) {
	b.B[b.Position] = x
	b.Position++
}

// WriteInt16 writes a little-endian 16-bit value at the cursor.
func (b *Buffer) WriteInt16(x int16) {
	binary.LittleEndian.PutUint16(b.B[b.Position:], uint16(x))
	b.Position += 2
}

// WriteInt16At writes a little-endian 16-bit value at offset i without moving the cursor.
func (b *Buffer) WriteInt16At(i int, x int16) {
	binary.LittleEndian.PutUint16(b.B[i:], uint16(x))
}

// WriteInt32 writes a little-endian 32-bit value at the cursor.
func (b *Buffer) WriteInt32(x int32) {
	binary.LittleEndian.PutUint32(b.B[b.Position:], uint32(x))
	b.Position += 4
}

// WriteInt32At writes a little-endian 32-bit value at offset i without moving the cursor.
func (b *Buffer) WriteInt32At(i int, x int32) {
	binary.LittleEndian.PutUint32(b.B[i:], uint32(x))
}

// WriteInt64 writes a little-endian 64-bit value at the cursor.
func (b *Buffer) WriteInt64(x int64) {
	binary.LittleEndian.PutUint64(b.B[b.Position:], uint64(x))
	b.Position += 8
}

// WriteFloat32 writes the IEEE-754 bits of x little-endian at the cursor.
func (b *Buffer) WriteFloat32(x float32) {
	binary.LittleEndian.PutUint32(b.B[b.Position:], math.Float32bits(x))
	b.Position += 4
}

// WriteFloat64 writes the IEEE-754 bits of x little-endian at the cursor.
func (b *Buffer) WriteFloat64(x float64) {
	binary.LittleEndian.PutUint64(b.B[b.Position:], math.Float64bits(x))
	b.Position += 8
}

// WriteBytes copies src to the cursor.
func (b *Buffer) WriteBytes(src []byte) {
	if len(src) > 0 {
		copy(b.B[b.Position:], src)
		b.Position += len(src)
	}
}

// WriteString copies the bytes of s to the cursor.
func (b *Buffer) WriteString(s string) {
	if len(s) > 0 {
		copy(b.B[b.Position:], s)
		b.Position += len(s)
	}
}

// WriteVarint32 writes x in base-128 little-endian form, 1 to 5 bytes.
func (b *Buffer) WriteVarint32(x uint32) {
	for x > 0x7f {
		b.B[b.Position] = byte(x&0x7f) | 0x80
		b.Position++
		x >>= 7
	}
	b.B[b.Position] = byte(x)
	b.Position++
}

// WriteVarintNegative1 writes the 5-byte varint form of 0xFFFFFFFF, which
// reads back as -1 and marks a null string element.
func (b *Buffer) WriteVarintNegative1() {
	p := b.Position
	b.B[p] = 0xff
	b.B[p+1] = 0xff
	b.B[p+2] = 0xff
	b.B[p+3] = 0xff
	b.B[p+4] = 0x0f
	b.Position += 5
}

// VarintSize returns the encoded size of x in bytes.
func VarintSize(x uint32) int {
	switch {
	case x <= 0x7f:
		return 1
	case x <= 0x3fff:
		return 2
	case x <= 0x1fffff:
		return 3
	case x <= 0xfffffff:
		return 4
	default:
		return 5
	}
}

// ReadUint8 reads one byte at the cursor.
func (b *Buffer) ReadUint8() (byte, error) {
	if b.Position >= b.Limit {
		return 0, errs.ErrOutOfBound
	}
	x := b.B[b.Position]
	b.Position++

	return x, nil
}

// ReadUint8At reads one byte at offset i without moving the cursor.
func (b *Buffer) ReadUint8At(i int) (byte, error) {
	if i >= b.Limit {
		return 0, errs.ErrOutOfBound
	}

	return b.B[i], nil
}

// ReadInt16 reads a little-endian 16-bit value at the cursor.
func (b *Buffer) ReadInt16() (int16, error) {
	if b.Position+2 > b.Limit {
		return 0, errs.ErrOutOfBound
	}
	x := int16(binary.LittleEndian.Uint16(b.B[b.Position:]))
	b.Position += 2

	return x, nil
}

// ReadInt32 reads a little-endian 32-bit value at the cursor.
func (b *Buffer) ReadInt32() (int32, error) {
	if b.Position+4 > b.Limit {
		return 0, errs.ErrOutOfBound
	}
	x := int32(binary.LittleEndian.Uint32(b.B[b.Position:]))
	b.Position += 4

	return x, nil
}

// ReadInt64 reads a little-endian 64-bit value at the cursor.
func (b *Buffer) ReadInt64() (int64, error) {
	x, err := b.ReadInt64At(b.Position)
	if err != nil {
		return 0, err
	}
	b.Position += 8

	return x, nil
}

// ReadInt64At reads a little-endian 64-bit value at offset i without moving the cursor.
func (b *Buffer) ReadInt64At(i int) (int64, error) {
	if i+8 > b.Limit {
		return 0, errs.ErrOutOfBound
	}

	return int64(binary.LittleEndian.Uint64(b.B[i:])), nil
}

// ReadFloat32 reads little-endian IEEE-754 bits at the cursor.
func (b *Buffer) ReadFloat32() (float32, error) {
	x, err := b.ReadInt32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(uint32(x)), nil
}

// ReadFloat64 reads little-endian IEEE-754 bits at the cursor.
func (b *Buffer) ReadFloat64() (float64, error) {
	x, err := b.ReadInt64()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(uint64(x)), nil
}

// ReadBytes reads n bytes at the cursor into a fresh slice.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := b.CheckBound(b.Position, n); err != nil {
		return nil, err
	}
	dst := make([]byte, n)
	copy(dst, b.B[b.Position:])
	b.Position += n

	return dst, nil
}

// ReadVarint32 reads a base-128 varint of up to 5 bytes. The all-ones
// encoding reads back as -1.
func (b *Buffer) ReadVarint32() (int32, error) {
	var x uint32
	for shift := uint(0); shift < 35; shift += 7 {
		if b.Position >= b.Limit {
			return 0, errs.ErrOutOfBound
		}
		c := b.B[b.Position]
		b.Position++
		x |= uint32(c&0x7f) << shift
		if c < 0x80 {
			break
		}
	}

	return int32(x), nil
}
