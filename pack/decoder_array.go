package pack

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/arloliu/packrec/endian"
	"github.com/arloliu/packrec/errs"
	"github.com/arloliu/packrec/format"
)

// getSize positions the cursor at an object array's elements and returns the
// element count, or -1 when the field is absent or unreadable.
func (d *Decoder) getSize(index byte) int {
	info := d.getInfo(index)
	if info == nullFlag {
		return -1
	}
	if info&intMask == 0 {
		return 0
	}
	d.buf.Position = int(uint64(info) >> 32)
	n, err := d.buf.ReadVarint32()
	if err != nil {
		d.fail(err)
		return -1
	}
	if n < 0 || int(n) > format.MaxObjectArraySize {
		d.fail(fmt.Errorf("%w: %d elements", errs.ErrInvalidSize, n))
		return -1
	}

	return int(n)
}

// takeString reads one string element at the cursor. Null elements read as
// the empty string.
func (d *Decoder) takeString() string {
	s, _ := d.takeStringPtr()
	return s
}

// takeStringPtr reads one string element at the cursor, reporting whether it
// was non-null.
func (d *Decoder) takeStringPtr() (string, bool) {
	n, err := d.buf.ReadVarint32()
	if err != nil {
		d.fail(err)
		return "", false
	}
	if n < 0 {
		return "", false
	}
	if n == 0 {
		return "", true
	}
	if err := d.buf.CheckBound(d.buf.Position, int(n)); err != nil {
		d.fail(err)
		return "", false
	}
	offset := d.buf.Position
	d.buf.Position += int(n)

	return string(d.buf.B[offset : offset+int(n)]), true
}

// varPayload returns the offset and byte length of a variable-length field,
// with ok false when the field is absent.
func (d *Decoder) varPayload(index byte) (offset, n int, ok bool) {
	info := d.getInfo(index)
	if info == nullFlag {
		return 0, 0, false
	}

	return int(uint64(info) >> 32), int(info & intMask), true
}

// GetInt32Array reads a fixed-width int32 array field, nil when absent.
func (d *Decoder) GetInt32Array(index byte) []int32 {
	offset, n, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if n&0x3 != 0 {
		d.fail(fmt.Errorf("%w: %d bytes for int32 elements", errs.ErrInvalidArrayLength, n))
		return nil
	}
	out := make([]int32, n>>2)
	if len(out) == 0 {
		return out
	}
	if endian.IsNativeLittleEndian() && len(out) >= 4 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n), d.buf.B[offset:offset+n])
		return out
	}
	d.buf.Position = offset
	for i := range out {
		out[i], _ = d.buf.ReadInt32()
	}

	return out
}

// GetInt64Array reads a fixed-width int64 array field, nil when absent.
func (d *Decoder) GetInt64Array(index byte) []int64 {
	offset, n, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if n&0x7 != 0 {
		d.fail(fmt.Errorf("%w: %d bytes for int64 elements", errs.ErrInvalidArrayLength, n))
		return nil
	}
	out := make([]int64, n>>3)
	if len(out) == 0 {
		return out
	}
	if endian.IsNativeLittleEndian() && len(out) >= 2 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n), d.buf.B[offset:offset+n])
		return out
	}
	d.buf.Position = offset
	for i := range out {
		out[i], _ = d.buf.ReadInt64()
	}

	return out
}

// GetFloat32Array reads a fixed-width float32 array field, nil when absent.
func (d *Decoder) GetFloat32Array(index byte) []float32 {
	offset, n, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if n&0x3 != 0 {
		d.fail(fmt.Errorf("%w: %d bytes for float32 elements", errs.ErrInvalidArrayLength, n))
		return nil
	}
	out := make([]float32, n>>2)
	if len(out) == 0 {
		return out
	}
	if endian.IsNativeLittleEndian() && len(out) >= 4 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n), d.buf.B[offset:offset+n])
		return out
	}
	d.buf.Position = offset
	for i := range out {
		out[i], _ = d.buf.ReadFloat32()
	}

	return out
}

// GetFloat64Array reads a fixed-width float64 array field, nil when absent.
func (d *Decoder) GetFloat64Array(index byte) []float64 {
	offset, n, ok := d.varPayload(index)
	if !ok {
		return nil
	}
	if n&0x7 != 0 {
		d.fail(fmt.Errorf("%w: %d bytes for float64 elements", errs.ErrInvalidArrayLength, n))
		return nil
	}
	out := make([]float64, n>>3)
	if len(out) == 0 {
		return out
	}
	if endian.IsNativeLittleEndian() && len(out) >= 2 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n), d.buf.B[offset:offset+n])
		return out
	}
	d.buf.Position = offset
	for i := range out {
		out[i], _ = d.buf.ReadFloat64()
	}

	return out
}

// GetStringArray reads a string array field, nil when absent. Null elements
// read as empty strings; use GetStringPtrArray to preserve them.
func (d *Decoder) GetStringArray(index byte) []string {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = d.takeString()
	}

	return out
}

// GetStringPtrArray reads a string array field preserving null elements,
// nil when absent.
func (d *Decoder) GetStringPtrArray(index byte) []*string {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make([]*string, n)
	for i := range out {
		if s, ok := d.takeStringPtr(); ok {
			out[i] = &s
		}
	}

	return out
}

// GetStr2Str reads a string-to-string map field, nil when absent.
func (d *Decoder) GetStr2Str(index byte) map[string]string {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]string, n)
	for range n {
		k := d.takeString()
		out[k] = d.takeString()
	}

	return out
}

// GetStr2Int32 reads a string-to-int32 map field, nil when absent.
func (d *Decoder) GetStr2Int32(index byte) map[string]int32 {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]int32, n)
	for range n {
		k := d.takeString()
		v, err := d.buf.ReadInt32()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = v
	}

	return out
}

// GetStr2Int64 reads a string-to-int64 map field, nil when absent.
func (d *Decoder) GetStr2Int64(index byte) map[string]int64 {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]int64, n)
	for range n {
		k := d.takeString()
		v, err := d.buf.ReadInt64()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = v
	}

	return out
}

// GetStr2Float32 reads a string-to-float32 map field, nil when absent.
func (d *Decoder) GetStr2Float32(index byte) map[string]float32 {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]float32, n)
	for range n {
		k := d.takeString()
		v, err := d.buf.ReadFloat32()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = v
	}

	return out
}

// GetStr2Float64 reads a string-to-float64 map field, nil when absent.
func (d *Decoder) GetStr2Float64(index byte) map[string]float64 {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]float64, n)
	for range n {
		k := d.takeString()
		v, err := d.buf.ReadFloat64()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = v
	}

	return out
}

// GetInt2Int reads an int32-to-int32 map field, nil when absent.
func (d *Decoder) GetInt2Int(index byte) map[int32]int32 {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[int32]int32, n)
	for range n {
		k, err := d.buf.ReadInt32()
		if err != nil {
			d.fail(err)
			return nil
		}
		v, err := d.buf.ReadInt32()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = v
	}

	return out
}

// GetInt2Str reads an int32-to-string map field, nil when absent.
func (d *Decoder) GetInt2Str(index byte) map[int32]string {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[int32]string, n)
	for range n {
		k, err := d.buf.ReadInt32()
		if err != nil {
			d.fail(err)
			return nil
		}
		out[k] = d.takeString()
	}

	return out
}

// GetDecoder returns a child decoder over a nested record field, nil when
// the field is absent. The child shares the parent's underlying bytes.
func (d *Decoder) GetDecoder(index byte) *Decoder {
	offset, n, ok := d.varPayload(index)
	if !ok {
		return nil
	}

	return newDecoderAt(d.buf.B, offset, n)
}

// takeElementWindow reads one record-array element header at the cursor and
// returns the element window, with ok false for a null element.
func (d *Decoder) takeElementWindow() (offset, length int, ok bool, err error) {
	a, err := d.buf.ReadInt16()
	if err != nil {
		return 0, 0, false, err
	}
	if uint16(a) == format.NullPackable {
		return 0, 0, false, nil
	}
	n := int(a)
	if a < 0 {
		b, err := d.buf.ReadInt16()
		if err != nil {
			return 0, 0, false, err
		}
		n = int(a&0x7fff)<<16 | int(uint16(b))
	}
	if err := d.buf.CheckBound(d.buf.Position, n); err != nil {
		return 0, 0, false, err
	}
	offset = d.buf.Position
	d.buf.Position += n

	return offset, n, true, nil
}

// DecoderArray streams the elements of a record-array field through a single
// reusable child decoder, avoiding a decoder allocation per element. The
// child returned by Next is only valid until the next call.
type DecoderArray struct {
	parent *Decoder
	child  *Decoder
	count  int
	index  int
}

// GetDecoderArray returns an iterator over a record-array field, nil when
// the field is absent.
func (d *Decoder) GetDecoderArray(index byte) *DecoderArray {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}

	return &DecoderArray{parent: d, count: n}
}

// Count returns the number of elements, null elements included.
func (a *DecoderArray) Count() int {
	return a.count
}

// HasNext reports whether elements remain.
func (a *DecoderArray) HasNext() bool {
	return a.index < a.count
}

// Next returns the decoder for the next element, or (nil, nil) for a null
// element. The returned decoder is reused by the following Next call.
func (a *DecoderArray) Next() (*Decoder, error) {
	if a.index >= a.count {
		return nil, nil
	}
	a.index++
	offset, length, ok, err := a.parent.takeElementWindow()
	if err != nil {
		a.parent.fail(err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if a.child == nil {
		a.child = newDecoderAt(a.parent.buf.B, offset, length)
	} else {
		a.child.reset(offset, length)
	}

	return a.child, nil
}

// All returns an iterator over the element decoders, yielding nil for null
// elements. Iteration stops early on malformed input; the failure is
// recorded on the parent decoder.
func (a *DecoderArray) All() iter.Seq[*Decoder] {
	return func(yield func(*Decoder) bool) {
		for a.HasNext() {
			child, err := a.Next()
			if err != nil {
				return
			}
			if !yield(child) {
				return
			}
		}
	}
}

// GetPackable decodes a nested record field, with ok false when the field
// is absent.
func GetPackable[T any](d *Decoder, index byte, decode DecodeFunc[T]) (T, bool) {
	child := d.GetDecoder(index)
	if child == nil {
		var zero T
		return zero, false
	}
	v := decode(child)
	if child.err != nil {
		d.fail(child.err)
	}

	return v, true
}

// GetPackableArray decodes a record-array field, nil when absent. Null
// elements decode to the zero value of T, which is nil when T is a pointer
// type, the usual shape of a DecodeFunc result.
func GetPackableArray[T any](d *Decoder, index byte, decode DecodeFunc[T]) []T {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		offset, length, ok, err := d.takeElementWindow()
		if err != nil {
			d.fail(err)
			return nil
		}
		if !ok {
			continue
		}
		child := newDecoderAt(d.buf.B, offset, length)
		out[i] = decode(child)
		if child.err != nil {
			d.fail(child.err)
			return nil
		}
	}

	return out
}

// GetStr2Pack decodes a string-to-record map field, nil when absent. Null
// record values decode to the zero value of T.
func GetStr2Pack[T any](d *Decoder, index byte, decode DecodeFunc[T]) map[string]T {
	n := d.getSize(index)
	if n < 0 {
		return nil
	}
	out := make(map[string]T, n)
	for range n {
		k := d.takeString()
		offset, length, ok, err := d.takeElementWindow()
		if err != nil {
			d.fail(err)
			return nil
		}
		if !ok {
			var zero T
			out[k] = zero
			continue
		}
		child := newDecoderAt(d.buf.B, offset, length)
		out[k] = decode(child)
		if child.err != nil {
			d.fail(child.err)
			return nil
		}
	}

	return out
}
