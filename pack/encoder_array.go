package pack

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/packrec/endian"
	"github.com/arloliu/packrec/errs"
	"github.com/arloliu/packrec/format"
)

// Fixed-width primitive arrays are raw little-endian element bytes behind a
// tag and length prefix. On a little-endian host, arrays past a small size
// are bulk-copied straight from the element memory; otherwise elements are
// written one by one.

// PutInt32Array writes an array of 32-bit integers. A nil slice is skipped.
func (e *Encoder) PutInt32Array(index byte, value []int32) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if endian.IsNativeLittleEndian() && n > 4 {
		return e.PutBytes(index, unsafe.Slice((*byte)(unsafe.Pointer(&value[0])), n<<2))
	}
	if e.wrapTagAndLength(index, n<<2) {
		for _, x := range value {
			e.buf.WriteInt32(x)
		}
	}

	return e
}

// PutInt64Array writes an array of 64-bit integers. A nil slice is skipped.
func (e *Encoder) PutInt64Array(index byte, value []int64) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if endian.IsNativeLittleEndian() && n > 2 {
		return e.PutBytes(index, unsafe.Slice((*byte)(unsafe.Pointer(&value[0])), n<<3))
	}
	if e.wrapTagAndLength(index, n<<3) {
		for _, x := range value {
			e.buf.WriteInt64(x)
		}
	}

	return e
}

// PutFloat32Array writes an array of 32-bit floats. A nil slice is skipped.
func (e *Encoder) PutFloat32Array(index byte, value []float32) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if endian.IsNativeLittleEndian() && n > 4 {
		return e.PutBytes(index, unsafe.Slice((*byte)(unsafe.Pointer(&value[0])), n<<2))
	}
	if e.wrapTagAndLength(index, n<<2) {
		for _, x := range value {
			e.buf.WriteFloat32(x)
		}
	}

	return e
}

// PutFloat64Array writes an array of 64-bit floats. A nil slice is skipped.
func (e *Encoder) PutFloat64Array(index byte, value []float64) *Encoder {
	if value == nil {
		return e
	}
	n := len(value)
	if endian.IsNativeLittleEndian() && n > 2 {
		return e.PutBytes(index, unsafe.Slice((*byte)(unsafe.Pointer(&value[0])), n<<3))
	}
	if e.wrapTagAndLength(index, n<<3) {
		for _, x := range value {
			e.buf.WriteFloat64(x)
		}
	}

	return e
}

// wrapObjectArrayTag emits the tag of an object array of the given size and
// returns the tag position, or -1 when there is nothing more to write
// (empty array, oversize, or a prior failure). An empty array stays a bare
// tag and decodes as present with zero elements.
func (e *Encoder) wrapObjectArrayTag(index byte, size int) int {
	if size > format.MaxObjectArraySize {
		e.fail(fmt.Errorf("%w: %d elements", errs.ErrInvalidSize, size))
		return -1
	}
	// worst case: 2 bytes index, 4 bytes length, 5 bytes count
	if !e.checkCapacity(11) {
		return -1
	}
	pTag := e.buf.Position
	e.putIndex(index)
	if size <= 0 {
		return -1
	}

	return pTag
}

// wrapString writes one length-prefixed string element.
func (e *Encoder) wrapString(s string) {
	if !e.checkCapacity(5 + len(s)) {
		return
	}
	e.buf.WriteVarint32(uint32(len(s)))
	e.buf.WriteString(s)
}

// wrapNullString writes the null element marker.
func (e *Encoder) wrapNullString() {
	if !e.checkCapacity(5) {
		return
	}
	e.buf.WriteVarintNegative1()
}

// PutStringArray writes an array of strings. A nil slice is skipped.
// Elements cannot be null; use PutStringPtrArray for nullable elements.
func (e *Encoder) PutStringArray(index byte, value []string) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for _, s := range value {
		e.wrapString(s)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// PutStringPtrArray writes an array of nullable strings. A nil slice is
// skipped; nil elements round-trip as nil.
func (e *Encoder) PutStringPtrArray(index byte, value []*string) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for _, s := range value {
		if s == nil {
			e.wrapNullString()
		} else {
			e.wrapString(*s)
		}
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}

// wrapPackable writes one record-array element: a 16-bit length prefix and
// the element bytes, the null marker for nil, or an extended 32-bit length
// (high bit of the first half set) for elements past 32 KiB. The extended
// form cannot collide with the null marker because record sizes are capped
// far below 0x7FFF0000.
func (e *Encoder) wrapPackable(p Packable) {
	if !e.checkCapacity(2) {
		return
	}
	if p == nil {
		nullMarker := format.NullPackable
		e.buf.WriteInt16(int16(nullMarker))
		return
	}
	pLen := e.buf.Position
	e.buf.Position += 2
	pPack := e.buf.Position
	p.Encode(e)
	if e.err != nil {
		return
	}
	n := e.buf.Position - pPack
	if n <= 0x7FFF {
		e.buf.WriteInt16At(pLen, int16(n))
		return
	}
	if !e.checkCapacity(2) {
		return
	}
	copy(e.buf.B[pPack+2:], e.buf.B[pPack:pPack+n])
	e.buf.Position += 2
	e.buf.WriteInt16At(pLen, int16(n>>16|0x8000))
	e.buf.WriteInt16At(pLen+2, int16(n))
}

// PutPackableArray writes an array of nested records. A nil slice is
// skipped; nil elements round-trip as null.
func (e *Encoder) PutPackableArray(index byte, value []Packable) *Encoder {
	if value == nil {
		return e
	}
	pTag := e.wrapObjectArrayTag(index, len(value))
	if pTag < 0 {
		return e
	}
	e.buf.Position += 4
	pValue := e.buf.Position
	e.buf.WriteVarint32(uint32(len(value)))
	for _, p := range value {
		e.wrapPackable(p)
	}
	if e.err == nil {
		e.putLen(pTag, pValue)
	}

	return e
}
