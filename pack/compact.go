package pack

import (
	"fmt"
	"math"

	"github.com/arloliu/packrec/buffer"
	"github.com/arloliu/packrec/errs"
	"github.com/arloliu/packrec/format"
)

// Compact array coding. Three packing schemes share this file:
//
//   - boolean arrays: one bit per flag, with a short single-byte form for
//     up to five elements and a remain byte for longer arrays;
//   - enum arrays: 1, 2, 4 or 8 bits per element, the width chosen from the
//     OR of all elements and recorded in a header byte;
//   - compact numeric arrays: elements grouped by four, a 2-bit width flag
//     per element in a flag region preceding the value region.
//
// Numeric flag values: 00 zero (no bytes), 01 one byte (int) or the high 16
// bits (double), 10 two bytes (int) or the high 32 bits (double), 11 full
// width. Doubles compress by their leading IEEE-754 bits, which captures
// small integers and simple fractions.

// bitToByteCount returns the bytes needed to hold totalBits bits.
func bitToByteCount(totalBits int) int {
	n := totalBits >> 3
	if totalBits&0x7 != 0 {
		n++
	}

	return n
}

// PutBoolArray writes a bit-packed boolean array. A nil slice is skipped.
func (e *Encoder) PutBoolArray(index byte, value []bool) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if n == 0 {
		e.wrapTagAndLength(index, 0)
		return e
	}
	if n <= 5 {
		b := byte(n << 5)
		for i, v := range value {
			if v {
				b |= 1 << i
			}
		}
		if e.wrapTagAndLength(index, 1) {
			e.buf.WriteUint8(b)
		}

		return e
	}

	remain := n & 0x7
	byteCount := n>>3 + 1
	if remain != 0 {
		byteCount++
	}
	if !e.wrapTagAndLength(index, byteCount) {
		return e
	}
	e.buf.WriteUint8(byte(remain))
	for i := 0; i < n; i += 8 {
		b := byte(0)
		for j := i; j < min(i+8, n); j++ {
			if value[j] {
				b |= 1 << (j & 0x7)
			}
		}
		e.buf.WriteUint8(b)
	}

	return e
}

// GetBoolArray reads a bit-packed boolean array, nil when absent.
func (d *Decoder) GetBoolArray(index byte) []bool {
	offset, length, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if length == 0 {
		return []bool{}
	}
	if length == 1 {
		b := d.buf.B[offset]
		out := make([]bool, b>>5)
		for i := range out {
			out[i] = b&1 == 1
			b >>= 1
		}

		return out
	}

	remain := int(d.buf.B[offset])
	if remain>>3 != 0 {
		d.fail(fmt.Errorf("%w: remain byte 0x%02x", errs.ErrBitInfoOverflow, remain))
		return nil
	}
	byteCount := length - 1
	n := byteCount << 3
	if remain > 0 {
		n -= 8 - remain
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = d.buf.B[offset+1+i>>3]>>(i&0x7)&1 == 1
	}

	return out
}

// PutEnumArray writes a bit-packed enum array. The element width adapts to
// the largest value; values over format.MaxEnumValue (and negatives) are
// rejected. A nil slice is skipped.
func (e *Encoder) PutEnumArray(index byte, value []int32) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if n == 0 {
		e.wrapTagAndLength(index, 0)
		return e
	}

	var sum int32
	for _, v := range value {
		sum |= v
	}
	var bitShift int
	switch {
	case sum>>1 == 0:
		bitShift = 0
	case sum>>2 == 0:
		bitShift = 1
	case sum>>4 == 0:
		bitShift = 2
	case sum>>8 == 0:
		bitShift = 3
	default:
		e.fail(fmt.Errorf("%w: combined bits 0x%x", errs.ErrEnumOverflow, sum))
		return e
	}

	if bitShift == 3 {
		if !e.wrapTagAndLength(index, n+1) {
			return e
		}
		e.buf.WriteUint8(3 << 3)
		for _, v := range value {
			e.buf.WriteUint8(byte(v))
		}

		return e
	}

	totalBits := n << bitShift
	remain := totalBits & 0x7
	byteCount := totalBits>>3 + 1
	if remain != 0 {
		byteCount++
	}
	if !e.wrapTagAndLength(index, byteCount) {
		return e
	}
	e.buf.WriteUint8(byte(bitShift<<3 | remain))

	indexShift := 3 - bitShift
	step := 1 << indexShift
	for i := 0; i < n; i += step {
		b := byte(0)
		for j := i; j < min(i+step, n); j++ {
			b |= byte(value[j]) << ((j & (step - 1)) << bitShift)
		}
		e.buf.WriteUint8(b)
	}

	return e
}

// GetEnumArray reads a bit-packed enum array, nil when absent.
func (d *Decoder) GetEnumArray(index byte) []int32 {
	offset, length, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if length == 0 {
		return []int32{}
	}

	bitInfo := d.buf.B[offset]
	if bitInfo>>5 != 0 {
		d.fail(fmt.Errorf("%w: header byte 0x%02x", errs.ErrBitInfoOverflow, bitInfo))
		return nil
	}
	bitShift := int(bitInfo >> 3)
	byteCount := length - 1

	if bitShift == 3 {
		out := make([]int32, byteCount)
		for i := range out {
			out[i] = int32(d.buf.B[offset+1+i])
		}

		return out
	}

	remain := int(bitInfo & 0x7)
	indexShift := 3 - bitShift
	n := byteCount << indexShift
	if remain > 0 {
		n -= (8 - remain) >> bitShift
	}
	valueMask := byte(1<<(1<<bitShift) - 1)
	out := make([]int32, n)
	for i := range out {
		b := d.buf.B[offset+1+i>>indexShift]
		out[i] = int32(b >> ((i & (1<<indexShift - 1)) << bitShift) & valueMask)
	}

	return out
}

// compactHeader tracks the reserved length slot and flag region of a compact
// numeric array while its value region is written.
type compactHeader struct {
	pLen      int
	sizeOfLen int
	pFlag     int
}

// putCompactArrayHeader emits the tag, a length prefix sized to the
// worst-case payload, the element count and the zeroed flag region. The
// true length is patched afterwards without moving bytes.
func (e *Encoder) putCompactArrayHeader(index byte, n, width int) (compactHeader, bool) {
	flagBytes := bitToByteCount(n << 1)
	maxSize := buffer.VarintSize(uint32(n)) + flagBytes + n*width
	if !e.checkCapacity(6 + maxSize) {
		return compactHeader{}, false
	}

	pTag := e.buf.Position
	e.putIndex(index)
	pLen := e.buf.Position
	var sizeOfLen int
	switch {
	case maxSize <= 0xff:
		e.buf.B[pTag] |= byte(format.TypeVar8)
		sizeOfLen = 1
	case maxSize <= 0xffff:
		e.buf.B[pTag] |= byte(format.TypeVar16)
		sizeOfLen = 2
	default:
		e.buf.B[pTag] |= byte(format.TypeVar32)
		sizeOfLen = 4
	}
	e.buf.Position += sizeOfLen
	e.buf.WriteVarint32(uint32(n))
	pFlag := e.buf.Position
	e.buf.Position += flagBytes

	return compactHeader{pLen: pLen, sizeOfLen: sizeOfLen, pFlag: pFlag}, true
}

// patchCompactArrayLen writes the true payload length into the reserved slot.
func (e *Encoder) patchCompactArrayLen(h compactHeader) {
	n := e.buf.Position - (h.pLen + h.sizeOfLen)
	switch h.sizeOfLen {
	case 1:
		e.buf.B[h.pLen] = byte(n)
	case 2:
		e.buf.WriteInt16At(h.pLen, int16(n))
	default:
		e.buf.WriteInt32At(h.pLen, int32(n))
	}
}

// PutCompactInt32Array writes a width-compressed int32 array. A nil slice
// is skipped. Negative elements always take full width.
func (e *Encoder) PutCompactInt32Array(index byte, value []int32) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if n == 0 {
		e.wrapTagAndLength(index, 0)
		return e
	}
	h, ok := e.putCompactArrayHeader(index, n, 4)
	if !ok {
		return e
	}
	for i := 0; i < n; i += 4 {
		flags := byte(0)
		for j := i; j < min(i+4, n); j++ {
			x := value[j]
			if x == 0 {
				continue
			}
			shift := (j & 0x3) << 1
			switch {
			case x>>8 == 0:
				e.buf.WriteUint8(byte(x))
				flags |= 1 << shift
			case x>>16 == 0:
				e.buf.WriteInt16(int16(x))
				flags |= 2 << shift
			default:
				e.buf.WriteInt32(x)
				flags |= 3 << shift
			}
		}
		e.buf.B[h.pFlag+i>>2] = flags
	}
	e.patchCompactArrayLen(h)

	return e
}

// PutCompactInt64Array writes a width-compressed int64 array. A nil slice
// is skipped. Elements take 1, 2 or 8 bytes; negatives always take 8.
func (e *Encoder) PutCompactInt64Array(index byte, value []int64) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if n == 0 {
		e.wrapTagAndLength(index, 0)
		return e
	}
	h, ok := e.putCompactArrayHeader(index, n, 8)
	if !ok {
		return e
	}
	for i := 0; i < n; i += 4 {
		flags := byte(0)
		for j := i; j < min(i+4, n); j++ {
			x := value[j]
			if x == 0 {
				continue
			}
			shift := (j & 0x3) << 1
			switch {
			case x>>8 == 0:
				e.buf.WriteUint8(byte(x))
				flags |= 1 << shift
			case x>>16 == 0:
				e.buf.WriteInt16(int16(x))
				flags |= 2 << shift
			default:
				e.buf.WriteInt64(x)
				flags |= 3 << shift
			}
		}
		e.buf.B[h.pFlag+i>>2] = flags
	}
	e.patchCompactArrayLen(h)

	return e
}

// PutCompactFloat64Array writes a width-compressed float64 array. A nil
// slice is skipped. Elements whose IEEE-754 bits fit in the top 16 or 32
// bits are stored shortened.
func (e *Encoder) PutCompactFloat64Array(index byte, value []float64) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if n == 0 {
		e.wrapTagAndLength(index, 0)
		return e
	}
	h, ok := e.putCompactArrayHeader(index, n, 8)
	if !ok {
		return e
	}
	for i := 0; i < n; i += 4 {
		flags := byte(0)
		for j := i; j < min(i+4, n); j++ {
			x := value[j]
			if x == 0 {
				continue
			}
			shift := (j & 0x3) << 1
			bits := math.Float64bits(x)
			switch {
			case bits<<16 == 0:
				e.buf.WriteInt16(int16(bits >> 48))
				flags |= 1 << shift
			case bits<<32 == 0:
				e.buf.WriteInt32(int32(bits >> 32))
				flags |= 2 << shift
			default:
				e.buf.WriteInt64(int64(bits))
				flags |= 3 << shift
			}
		}
		e.buf.B[h.pFlag+i>>2] = flags
	}
	e.patchCompactArrayLen(h)

	return e
}

// compactPayload positions the cursor past the count and flag region of a
// compact numeric array field. present is false when the field is absent or
// unreadable; an empty array reports present with n == 0.
func (d *Decoder) compactPayload(index byte) (n, pFlag int, present bool) {
	info := d.getInfo(index)
	if info == nullFlag {
		return 0, 0, false
	}
	if info&intMask == 0 {
		return 0, 0, true
	}
	d.buf.Position = int(uint64(info) >> 32)
	count, err := d.buf.ReadVarint32()
	if err != nil {
		d.fail(err)
		return 0, 0, false
	}
	if count < 0 {
		d.fail(fmt.Errorf("%w: %d elements", errs.ErrInvalidSize, count))
		return 0, 0, false
	}
	n = int(count)
	flagBytes := bitToByteCount(n << 1)
	if err := d.buf.CheckBound(d.buf.Position, flagBytes); err != nil {
		d.fail(err)
		return 0, 0, false
	}
	pFlag = d.buf.Position
	d.buf.Position += flagBytes

	return n, pFlag, true
}

// GetCompactInt32Array reads a width-compressed int32 array, nil when absent.
func (d *Decoder) GetCompactInt32Array(index byte) []int32 {
	n, pFlag, present := d.compactPayload(index)
	if !present {
		return nil
	}
	out := make([]int32, n)
	for i := 0; i < n; i += 4 {
		b := d.buf.B[pFlag+i>>2]
		for j := i; j < min(i+4, n); j++ {
			switch b & 0x3 {
			case 1:
				x, err := d.buf.ReadUint8()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = int32(x)
			case 2:
				x, err := d.buf.ReadInt16()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = int32(uint16(x))
			case 3:
				x, err := d.buf.ReadInt32()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = x
			}
			b >>= 2
		}
	}

	return out
}

// GetCompactInt64Array reads a width-compressed int64 array, nil when absent.
func (d *Decoder) GetCompactInt64Array(index byte) []int64 {
	n, pFlag, present := d.compactPayload(index)
	if !present {
		return nil
	}
	out := make([]int64, n)
	for i := 0; i < n; i += 4 {
		b := d.buf.B[pFlag+i>>2]
		for j := i; j < min(i+4, n); j++ {
			switch b & 0x3 {
			case 1:
				x, err := d.buf.ReadUint8()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = int64(x)
			case 2:
				x, err := d.buf.ReadInt16()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = int64(uint16(x))
			case 3:
				x, err := d.buf.ReadInt64()
				if err != nil {
					d.fail(err)
					return nil
				}
				out[j] = x
			}
			b >>= 2
		}
	}

	return out
}

// GetCompactFloat64Array reads a width-compressed float64 array, nil when absent.
func (d *Decoder) GetCompactFloat64Array(index byte) []float64 {
	n, pFlag, present := d.compactPayload(index)
	if !present {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i += 4 {
		b := d.buf.B[pFlag+i>>2]
		for j := i; j < min(i+4, n); j++ {
			var bits uint64
			switch b & 0x3 {
			case 1:
				x, err := d.buf.ReadInt16()
				if err != nil {
					d.fail(err)
					return nil
				}
				bits = uint64(uint16(x)) << 48
			case 2:
				x, err := d.buf.ReadInt32()
				if err != nil {
					d.fail(err)
					return nil
				}
				bits = uint64(uint32(x)) << 32
			case 3:
				x, err := d.buf.ReadInt64()
				if err != nil {
					d.fail(err)
					return nil
				}
				bits = uint64(x)
			}
			out[j] = math.Float64frombits(bits)
			b >>= 2
		}
	}

	return out
}
