package pack

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/arloliu/packrec/buffer"
	"github.com/arloliu/packrec/errs"
	"github.com/arloliu/packrec/format"
)

// bufferDefaultCapacity is the size of the inline buffer every encoder
// starts with; records that fit never touch the heap for wire bytes.
const bufferDefaultCapacity = 4096

// maxAllocated tracks the largest buffer any encoder in the process has
// grown to. It only steers the growth heuristic, so plain atomic access is
// all the synchronization it needs.
var maxAllocated atomic.Int64

func init() {
	maxAllocated.Store(bufferDefaultCapacity)
}

// Encoder accumulates the wire bytes of one record.
//
// Create one with NewEncoder, write fields with the Put operations (each
// field index must be used at most once), then take the result with Bytes.
// The zero value is not usable.
type Encoder struct {
	buf    buffer.Buffer
	err    error
	inline [bufferDefaultCapacity]byte
}

// NewEncoder creates an encoder with the default inline capacity.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.buf.B = e.inline[:]
	e.buf.Limit = bufferDefaultCapacity

	return e
}

// Err returns the first error recorded by a Put operation, or nil.
func (e *Encoder) Err() error {
	return e.err
}

// Bytes returns a copy of the encoded record, or the first recorded error.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([]byte, e.buf.Position)
	copy(out, e.buf.B)

	return out, nil
}

// Size returns the number of bytes encoded so far.
func (e *Encoder) Size() int {
	return e.buf.Position
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// checkCapacity grows the buffer so expand more bytes fit, doubling until
// sufficient. While the result stays below both the process high-water mark
// and format.DoubleBufferLimit it doubles once more: a buffer that small is
// likely to reach that level anyway, and the extra step halves the number of
// re-allocations on the way there.
func (e *Encoder) checkCapacity(expand int) bool {
	if e.err != nil {
		return false
	}
	desSize := e.buf.Position + expand
	if desSize <= e.buf.Limit {
		return true
	}
	if desSize > format.MaxBufferSize {
		e.fail(fmt.Errorf("%w: need %d bytes", errs.ErrCapacityOverflow, desSize))
		return false
	}

	newSize := e.buf.Limit << 1
	for desSize > newSize {
		newSize <<= 1
	}
	doubleLimit := min(int(maxAllocated.Load()), format.DoubleBufferLimit)
	if newSize < doubleLimit {
		newSize <<= 1
	}
	if int64(newSize) > maxAllocated.Load() {
		maxAllocated.Store(int64(newSize))
	}

	grown := make([]byte, newSize)
	copy(grown, e.buf.B[:e.buf.Position])
	e.buf.B = grown
	e.buf.Limit = newSize

	return true
}

// putIndex emits the tag byte (and the index byte for indexes >= 16).
// The caller ORs the type code into the tag afterwards.
func (e *Encoder) putIndex(index byte) {
	if index >= format.LittleIndexBound {
		e.buf.WriteUint8(format.BigIndexMask)
	}
	e.buf.WriteUint8(index)
}

// wrapTagAndLength emits tag plus a length prefix sized to n, or a bare tag
// when n is zero. The payload of n bytes follows; capacity for it is ensured.
func (e *Encoder) wrapTagAndLength(index byte, n int) bool {
	if !e.checkCapacity(6 + n) {
		return false
	}
	if n == 0 {
		e.putIndex(index)
		return true
	}
	pos := e.buf.Position
	e.putIndex(index)
	switch {
	case n <= 0xff:
		e.buf.B[pos] |= byte(format.TypeVar8)
		e.buf.WriteUint8(byte(n))
	case n <= 0xffff:
		e.buf.B[pos] |= byte(format.TypeVar16)
		e.buf.WriteInt16(int16(n))
	default:
		e.buf.B[pos] |= byte(format.TypeVar32)
		e.buf.WriteInt32(int32(n))
	}

	return true
}

// PutBool writes a boolean field. False encodes as a bare tag.
func (e *Encoder) PutBool(index byte, value bool) *Encoder {
	if value {
		return e.PutInt8(index, 1)
	}

	return e.PutInt8(index, 0)
}

// PutInt8 writes an 8-bit integer field.
func (e *Encoder) PutInt8(index byte, value int8) *Encoder {
	if !e.checkCapacity(3) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	if index < format.LittleIndexBound {
		e.buf.WriteUint8(index | byte(format.TypeNum8))
	} else {
		e.buf.WriteUint8(format.BigIndexMask | byte(format.TypeNum8))
		e.buf.WriteUint8(index)
	}
	e.buf.WriteUint8(byte(value))

	return e
}

// PutInt16 writes a 16-bit integer field with width compression.
func (e *Encoder) PutInt16(index byte, value int16) *Encoder {
	if !e.checkCapacity(4) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	pos := e.buf.Position
	e.putIndex(index)
	if value>>8 == 0 {
		e.buf.B[pos] |= byte(format.TypeNum8)
		e.buf.WriteUint8(byte(value))
	} else {
		e.buf.B[pos] |= byte(format.TypeNum16)
		e.buf.WriteInt16(value)
	}

	return e
}

// PutInt32 writes a 32-bit integer field with width compression.
//
// The width test uses arithmetic shifts, so negative values always take the
// full four bytes. Use PutSInt32 when small negatives are common.
func (e *Encoder) PutInt32(index byte, value int32) *Encoder {
	if !e.checkCapacity(6) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	pos := e.buf.Position
	e.putIndex(index)
	switch {
	case value>>8 == 0:
		e.buf.B[pos] |= byte(format.TypeNum8)
		e.buf.WriteUint8(byte(value))
	case value>>16 == 0:
		e.buf.B[pos] |= byte(format.TypeNum16)
		e.buf.WriteInt16(int16(value))
	default:
		e.buf.B[pos] |= byte(format.TypeNum32)
		e.buf.WriteInt32(value)
	}

	return e
}

// PutSInt32 writes a 32-bit integer field with zigzag encoding.
//
// Zigzag maps small negatives to small positives, at the cost of doubling
// positives: values in [128, 255] cost one byte plain but two zigzagged.
// Prefer it only when the value is likely a small negative number.
func (e *Encoder) PutSInt32(index byte, value int32) *Encoder {
	return e.PutInt32(index, (value<<1)^(value>>31))
}

// PutInt64 writes a 64-bit integer field with width compression.
func (e *Encoder) PutInt64(index byte, value int64) *Encoder {
	if !e.checkCapacity(10) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	pos := e.buf.Position
	e.putIndex(index)
	switch {
	case value>>32 != 0:
		e.buf.B[pos] |= byte(format.TypeNum64)
		e.buf.WriteInt64(value)
	case value>>8 == 0:
		e.buf.B[pos] |= byte(format.TypeNum8)
		e.buf.WriteUint8(byte(value))
	case value>>16 == 0:
		e.buf.B[pos] |= byte(format.TypeNum16)
		e.buf.WriteInt16(int16(value))
	default:
		e.buf.B[pos] |= byte(format.TypeNum32)
		e.buf.WriteInt32(int32(value))
	}

	return e
}

// PutSInt64 writes a 64-bit integer field with zigzag encoding.
func (e *Encoder) PutSInt64(index byte, value int64) *Encoder {
	return e.PutInt64(index, (value<<1)^(value>>63))
}

// PutFloat32 writes a 32-bit float field. Zero encodes as a bare tag.
func (e *Encoder) PutFloat32(index byte, value float32) *Encoder {
	if !e.checkCapacity(6) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	if index < format.LittleIndexBound {
		e.buf.WriteUint8(index | byte(format.TypeNum32))
	} else {
		e.buf.WriteUint8(format.BigIndexMask | byte(format.TypeNum32))
		e.buf.WriteUint8(index)
	}
	e.buf.WriteFloat32(value)

	return e
}

// PutFloat64 writes a 64-bit float field. Zero encodes as a bare tag.
func (e *Encoder) PutFloat64(index byte, value float64) *Encoder {
	if !e.checkCapacity(10) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	if index < format.LittleIndexBound {
		e.buf.WriteUint8(index | byte(format.TypeNum64))
	} else {
		e.buf.WriteUint8(format.BigIndexMask | byte(format.TypeNum64))
		e.buf.WriteUint8(index)
	}
	e.buf.WriteFloat64(value)

	return e
}

// PutCDouble writes a 64-bit float field in compact form.
//
// The IEEE-754 word halves are swapped before width selection, so the
// significant bits of doubles with short bit patterns (small integers,
// simple fractions like 0.25 or 1.5) land in the low word and the leading
// zeros get stripped. Integers below two million take four bytes or fewer.
// Uniformly random doubles save nothing; use PutFloat64 for those.
func (e *Encoder) PutCDouble(index byte, value float64) *Encoder {
	if !e.checkCapacity(10) {
		return e
	}
	if value == 0 {
		e.putIndex(index)
		return e
	}
	pos := e.buf.Position
	e.putIndex(index)
	bits := math.Float64bits(value)
	rot := bits>>32 | bits<<32
	switch {
	case rot>>8 == 0:
		e.buf.B[pos] |= byte(format.TypeNum8)
		e.buf.WriteUint8(byte(rot))
	case rot>>16 == 0:
		e.buf.B[pos] |= byte(format.TypeNum16)
		e.buf.WriteInt16(int16(rot))
	case rot>>32 == 0:
		e.buf.B[pos] |= byte(format.TypeNum32)
		e.buf.WriteInt32(int32(rot))
	default:
		e.buf.B[pos] |= byte(format.TypeNum64)
		e.buf.WriteInt64(int64(rot))
	}

	return e
}

// PutString writes a string field. The empty string encodes as a bare tag
// and decodes as present-but-empty; leave the field unwritten for absence.
func (e *Encoder) PutString(index byte, value string) *Encoder {
	if e.wrapTagAndLength(index, len(value)) {
		e.buf.WriteString(value)
	}

	return e
}

// PutBytes writes a raw byte-array field. A nil slice is skipped entirely;
// an empty one encodes as a present, empty array.
func (e *Encoder) PutBytes(index byte, value []byte) *Encoder {
	if value == nil {
		return e
	}
	if e.wrapTagAndLength(index, len(value)) {
		e.buf.WriteBytes(value)
	}

	return e
}

// PutCustom reserves a window of exactly n payload bytes for
// application-defined serialization and returns the buffer positioned at its
// start. The caller must write exactly n bytes. Returns nil after a prior
// failure.
func (e *Encoder) PutCustom(index byte, n int) *buffer.Buffer {
	if !e.wrapTagAndLength(index, n) {
		return nil
	}

	return &e.buf
}

// putLen back-patches the length of a nested payload that started at pValue
// with 4 reserved bytes before it. Short payloads get the reserved slot
// trimmed to a single length byte by moving the payload 3 bytes left; deep
// recursion trims inside-out, so each move only touches already-trimmed
// children.
func (e *Encoder) putLen(pTag, pValue int) {
	n := e.buf.Position - pValue
	if n <= format.TrimSizeLimit {
		e.buf.B[pTag] |= byte(format.TypeVar8)
		e.buf.B[pValue-4] = byte(n)
		copy(e.buf.B[pValue-3:], e.buf.B[pValue:pValue+n])
		e.buf.Position -= 3
	} else {
		e.buf.B[pTag] |= byte(format.TypeVar32)
		e.buf.WriteInt32At(pValue-4, int32(n))
	}
}

// PutPackable writes a nested record field. A nil value is skipped. A child
// that writes no fields encodes as a bare tag and decodes as a present,
// empty record.
func (e *Encoder) PutPackable(index byte, value Packable) *Encoder {
	if value == nil {
		return e
	}
	if !e.checkCapacity(6) {
		return e
	}
	pTag := e.buf.Position
	e.putIndex(index)
	e.buf.Position += 4
	pValue := e.buf.Position
	value.Encode(e)
	if e.err != nil {
		return e
	}
	if pValue == e.buf.Position {
		e.buf.Position -= 4
	} else {
		e.putLen(pTag, pValue)
	}

	return e
}
