package pack

import (
	"fmt"
	"math"

	"github.com/arloliu/packrec/buffer"
	"github.com/arloliu/packrec/errs"
	"github.com/arloliu/packrec/format"
)

const (
	defaultInfoLen = 32

	// nullFlag marks an absent field in the info table. It cannot collide
	// with a stored value: a 64-bit value with the top bit set is stored
	// indirectly, and offsets never exceed format.MaxBufferSize.
	nullFlag = int64(-1)

	// indirectBit marks an info slot that holds the byte offset of a 64-bit
	// value instead of the value itself.
	indirectBit = int64(math.MinInt64)

	intMask = int64(0xFFFFFFFF)
)

// Decoder serves random-access field reads over one encoded record.
//
// The decoder wraps the caller's byte slice without copying it. On first
// access it scans the record once, building a per-index table holding either
// the field value (short scalars) or the payload offset and length; every
// getter after that is a table lookup. The input slice must stay alive and
// unmodified for the decoder's lifetime.
type Decoder struct {
	buf      buffer.Buffer
	info     []int64
	maxIndex int
	err      error
	inline   [defaultInfoLen]int64
}

// NewDecoder creates a decoder over data, which must be one complete encoded
// record no larger than format.MaxBufferSize.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) > format.MaxBufferSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrBufferSizeLimit, len(data))
	}

	return newDecoderAt(data, 0, len(data)), nil
}

func newDecoderAt(b []byte, offset, length int) *Decoder {
	d := &Decoder{maxIndex: -1}
	d.buf.B = b
	d.buf.Position = offset
	d.buf.Limit = offset + length

	return d
}

// Err returns the first scan or read failure, or nil. Getters return their
// defaults after a failure; check Err (or use Unmarshal, which does) to tell
// corrupted input from absent fields.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// reset re-aims the decoder at another window of the same underlying slice.
// Used by DecoderArray to stream elements through one child decoder.
func (d *Decoder) reset(offset, length int) {
	d.buf.Position = offset
	d.buf.Limit = offset + length
	d.maxIndex = -1
	d.err = nil
}

// parse scans every field once, recording per index either the scalar value
// or the payload position and length, then verifies the scan consumed the
// window exactly. Duplicate indices resolve last-write-wins.
func (d *Decoder) parse() {
	if d.info == nil {
		d.info = d.inline[:]
	}

	var exists [4]uint64

	for d.buf.HasRemaining() {
		tag, _ := d.buf.ReadUint8()
		index := int(tag & format.IndexMask)
		if tag&format.BigIndexMask != 0 {
			bi, err := d.buf.ReadUint8()
			if err != nil {
				d.fail(err)
				return
			}
			index = int(bi)
		}
		if index > d.maxIndex {
			d.maxIndex = index
		}
		exists[index>>6] |= 1 << (index & 63)

		if index >= len(d.info) {
			newLen := len(d.info) << 1
			for index >= newLen {
				newLen <<= 1
			}
			grown := make([]int64, newLen)
			copy(grown, d.info)
			d.info = grown
		}

		if err := d.parseField(index, format.FieldType(tag&format.TypeMask)); err != nil {
			d.fail(err)
			return
		}
	}

	if d.buf.Position != d.buf.Limit {
		d.fail(errs.ErrInvalidPackData)
		return
	}

	for i := 0; i <= d.maxIndex; i++ {
		if exists[i>>6]&(1<<(i&63)) == 0 {
			d.info[i] = nullFlag
		}
	}
}

func (d *Decoder) parseField(index int, typ format.FieldType) error {
	switch typ {
	case format.Type0:
		d.info[index] = 0
	case format.TypeNum8:
		b, err := d.buf.ReadUint8()
		if err != nil {
			return err
		}
		d.info[index] = int64(b)
	case format.TypeNum16:
		x, err := d.buf.ReadInt16()
		if err != nil {
			return err
		}
		d.info[index] = int64(uint16(x))
	case format.TypeNum32:
		x, err := d.buf.ReadInt32()
		if err != nil {
			return err
		}
		d.info[index] = int64(uint32(x))
	case format.TypeNum64:
		x, err := d.buf.ReadInt64()
		if err != nil {
			return err
		}
		// A negative value would be indistinguishable from nullFlag or from
		// an offset slot, so store its position with the indirection bit set
		// instead of the value itself.
		if x >= 0 {
			d.info[index] = x
		} else {
			d.info[index] = int64(d.buf.Position-8) | indirectBit
		}
	default:
		var size int
		switch typ {
		case format.TypeVar8:
			b, err := d.buf.ReadUint8()
			if err != nil {
				return err
			}
			size = int(b)
		case format.TypeVar16:
			x, err := d.buf.ReadInt16()
			if err != nil {
				return err
			}
			size = int(uint16(x))
		default:
			x, err := d.buf.ReadInt32()
			if err != nil {
				return err
			}
			size = int(x)
		}
		if err := d.buf.CheckBound(d.buf.Position, size); err != nil {
			return err
		}
		d.info[index] = int64(d.buf.Position)<<32 | int64(size)
		d.buf.Position += size
	}

	return nil
}

func (d *Decoder) getInfo(index byte) int64 {
	if d.err != nil {
		return nullFlag
	}
	if d.maxIndex < 0 {
		d.parse()
		if d.err != nil {
			return nullFlag
		}
	}
	if int(index) > d.maxIndex {
		return nullFlag
	}

	return d.info[index]
}

// Contains reports whether the field was present on the wire.
func (d *Decoder) Contains(index byte) bool {
	return d.getInfo(index) != nullFlag
}

// GetBool reads a boolean field, false when absent.
func (d *Decoder) GetBool(index byte) bool {
	return d.getInfo(index) == 1
}

// GetBoolOr reads a boolean field with an explicit default.
func (d *Decoder) GetBoolOr(index byte, def bool) bool {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return info == 1
}

// GetInt8 reads an 8-bit integer field, zero when absent.
func (d *Decoder) GetInt8(index byte) int8 {
	return d.GetInt8Or(index, 0)
}

// GetInt8Or reads an 8-bit integer field with an explicit default.
func (d *Decoder) GetInt8Or(index byte, def int8) int8 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return int8(info)
}

// GetInt16 reads a 16-bit integer field, zero when absent.
func (d *Decoder) GetInt16(index byte) int16 {
	return d.GetInt16Or(index, 0)
}

// GetInt16Or reads a 16-bit integer field with an explicit default.
func (d *Decoder) GetInt16Or(index byte, def int16) int16 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return int16(info)
}

// GetInt32 reads a 32-bit integer field, zero when absent.
func (d *Decoder) GetInt32(index byte) int32 {
	return d.GetInt32Or(index, 0)
}

// GetInt32Or reads a 32-bit integer field with an explicit default.
func (d *Decoder) GetInt32Or(index byte, def int32) int32 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return int32(info)
}

// GetSInt32 reads a zigzag-encoded 32-bit integer field, zero when absent.
func (d *Decoder) GetSInt32(index byte) int32 {
	return d.GetSInt32Or(index, 0)
}

// GetSInt32Or reads a zigzag-encoded 32-bit integer field with an explicit default.
func (d *Decoder) GetSInt32Or(index byte, def int32) int32 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}
	n := int32(info)

	return int32(uint32(n)>>1) ^ -(n & 1)
}

// GetInt64 reads a 64-bit integer field, zero when absent.
func (d *Decoder) GetInt64(index byte) int64 {
	return d.GetInt64Or(index, 0)
}

// GetInt64Or reads a 64-bit integer field with an explicit default.
func (d *Decoder) GetInt64Or(index byte, def int64) int64 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return d.resolveInt64(info, def)
}

// resolveInt64 returns the stored value, following the indirection bit for
// negative 64-bit values.
func (d *Decoder) resolveInt64(info, def int64) int64 {
	if info >= 0 {
		return info
	}
	x, err := d.buf.ReadInt64At(int(info & intMask))
	if err != nil {
		d.fail(err)
		return def
	}

	return x
}

// GetSInt64 reads a zigzag-encoded 64-bit integer field, zero when absent.
func (d *Decoder) GetSInt64(index byte) int64 {
	return d.GetSInt64Or(index, 0)
}

// GetSInt64Or reads a zigzag-encoded 64-bit integer field with an explicit default.
func (d *Decoder) GetSInt64Or(index byte, def int64) int64 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}
	n := d.resolveInt64(info, def)

	return int64(uint64(n)>>1) ^ -(n & 1)
}

// GetFloat32 reads a 32-bit float field, zero when absent.
func (d *Decoder) GetFloat32(index byte) float32 {
	return d.GetFloat32Or(index, 0)
}

// GetFloat32Or reads a 32-bit float field with an explicit default.
func (d *Decoder) GetFloat32Or(index byte, def float32) float32 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}

	return math.Float32frombits(uint32(info))
}

// GetFloat64 reads a 64-bit float field, zero when absent.
func (d *Decoder) GetFloat64(index byte) float64 {
	return d.GetFloat64Or(index, 0)
}

// GetFloat64Or reads a 64-bit float field with an explicit default.
func (d *Decoder) GetFloat64Or(index byte, def float64) float64 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}
	x := d.resolveInt64(info, 0)

	return math.Float64frombits(uint64(x))
}

// GetCDouble reads a compact double field, zero when absent.
func (d *Decoder) GetCDouble(index byte) float64 {
	return d.GetCDoubleOr(index, 0)
}

// GetCDoubleOr reads a compact double field with an explicit default.
func (d *Decoder) GetCDoubleOr(index byte, def float64) float64 {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}
	x := uint64(d.resolveInt64(info, 0))

	return math.Float64frombits(x<<32 | x>>32)
}

// GetString reads a string field, empty when absent. Use Contains to tell an
// absent field from a present empty string, or GetStringOr for a default.
func (d *Decoder) GetString(index byte) string {
	return d.GetStringOr(index, "")
}

// GetStringOr reads a string field with an explicit default.
func (d *Decoder) GetStringOr(index byte, def string) string {
	info := d.getInfo(index)
	if info == nullFlag {
		return def
	}
	n := int(info & intMask)
	if n == 0 {
		return ""
	}
	offset := int(uint64(info) >> 32)

	return string(d.buf.B[offset : offset+n])
}

// GetBytes reads a raw byte-array field into a fresh slice, nil when absent.
func (d *Decoder) GetBytes(index byte) []byte {
	info := d.getInfo(index)
	if info == nullFlag {
		return nil
	}
	n := int(info & intMask)
	offset := int(uint64(info) >> 32)
	out := make([]byte, n)
	copy(out, d.buf.B[offset:])

	return out
}

// GetCustom returns the buffer positioned at the field's payload for
// application-defined deserialization, or nil when the field is absent.
// The window length is whatever the producer declared in PutCustom.
func (d *Decoder) GetCustom(index byte) *buffer.Buffer {
	info := d.getInfo(index)
	if info == nullFlag {
		return nil
	}
	if n := int(info & intMask); n == 0 {
		d.buf.Position = d.buf.Limit
	} else {
		d.buf.Position = int(uint64(info) >> 32)
	}

	return &d.buf
}
