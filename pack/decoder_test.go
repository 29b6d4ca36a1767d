package pack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/packrec/errs"
)

func decoderFor(t *testing.T, e *Encoder) *Decoder {
	t.Helper()
	data := encodedBytes(t, e)
	d, err := NewDecoder(data)
	require.NoError(t, err)

	return d
}

func TestDecoder_EmptyRecord(t *testing.T) {
	d, err := NewDecoder(nil)
	require.NoError(t, err)
	require.False(t, d.Contains(0))
	require.Equal(t, int32(0), d.GetInt32(0))
	require.NoError(t, d.Err())
}

func TestDecoder_ScalarRoundTrip(t *testing.T) {
	e := NewEncoder().
		PutBool(0, true).
		PutInt8(1, -7).
		PutInt16(2, -30000).
		PutInt32(3, 123456).
		PutSInt32(4, -3).
		PutInt64(5, 1<<40).
		PutSInt64(6, -1<<35).
		PutFloat32(7, 3.5).
		PutFloat64(8, 2.718281828).
		PutCDouble(9, 1.5).
		PutString(10, "hello")
	d := decoderFor(t, e)

	require.True(t, d.GetBool(0))
	require.Equal(t, int8(-7), d.GetInt8(1))
	require.Equal(t, int16(-30000), d.GetInt16(2))
	require.Equal(t, int32(123456), d.GetInt32(3))
	require.Equal(t, int32(-3), d.GetSInt32(4))
	require.Equal(t, int64(1<<40), d.GetInt64(5))
	require.Equal(t, int64(-1<<35), d.GetSInt64(6))
	require.Equal(t, float32(3.5), d.GetFloat32(7))
	require.Equal(t, 2.718281828, d.GetFloat64(8))
	require.Equal(t, 1.5, d.GetCDouble(9))
	require.Equal(t, "hello", d.GetString(10))
	require.NoError(t, d.Err())
}

func TestDecoder_AbsenceDefaults(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutInt32(0, 1))

	require.True(t, d.Contains(0))
	require.False(t, d.Contains(1))
	require.False(t, d.Contains(255))

	require.Equal(t, int32(0), d.GetInt32(1))
	require.Equal(t, int32(-5), d.GetInt32Or(1, -5))
	require.True(t, d.GetBoolOr(1, true))
	require.Equal(t, int8(9), d.GetInt8Or(1, 9))
	require.Equal(t, int16(9), d.GetInt16Or(1, 9))
	require.Equal(t, int64(9), d.GetInt64Or(1, 9))
	require.Equal(t, int32(9), d.GetSInt32Or(1, 9))
	require.Equal(t, int64(9), d.GetSInt64Or(1, 9))
	require.Equal(t, float32(9), d.GetFloat32Or(1, 9))
	require.Equal(t, float64(9), d.GetFloat64Or(1, 9))
	require.Equal(t, float64(9), d.GetCDoubleOr(1, 9))
	require.Equal(t, "d", d.GetStringOr(1, "d"))
	require.Nil(t, d.GetBytes(1))
	require.Nil(t, d.GetInt32Array(1))
	require.Nil(t, d.GetStringArray(1))
	require.Nil(t, d.GetStr2Str(1))
	require.Nil(t, d.GetDecoder(1))
	require.Nil(t, d.GetDecoderArray(1))
	require.Nil(t, d.GetCustom(1))
	require.NoError(t, d.Err())
}

func TestDecoder_ZeroEncodingEquivalence(t *testing.T) {
	// a zero scalar decodes exactly like a one-byte zero payload would
	d, err := NewDecoder([]byte{0x03})
	require.NoError(t, err)
	require.True(t, d.Contains(3))
	require.Equal(t, int32(0), d.GetInt32(3))
	require.Equal(t, int64(0), d.GetInt64(3))
	require.Equal(t, float64(0), d.GetFloat64(3))
	require.False(t, d.GetBool(3))

	// indistinguishable from an explicit one-byte zero payload
	explicit, err := NewDecoder([]byte{0x13, 0x00})
	require.NoError(t, err)
	require.True(t, explicit.Contains(3))
	require.Equal(t, int32(0), explicit.GetInt32(3))
}

func TestDecoder_EmptyStringPresent(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutString(4, ""))
	require.True(t, d.Contains(4))
	require.Equal(t, "", d.GetString(4))
	require.Equal(t, "", d.GetStringOr(4, "def"))
}

func TestDecoder_Int64Indirection(t *testing.T) {
	// values with bit 63 set are stored via offset with the indirection bit
	tests := []int64{-1, math.MinInt64, -1 << 40, math.MaxInt64}
	for _, v := range tests {
		d := decoderFor(t, NewEncoder().PutInt64(0, v))
		require.Equal(t, v, d.GetInt64(0))
		require.True(t, d.Contains(0))
	}
}

func TestDecoder_NegativeDoubles(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutFloat64(0, -12.25).PutCDouble(1, -12.25))
	require.Equal(t, -12.25, d.GetFloat64(0))
	require.Equal(t, -12.25, d.GetCDouble(1))
}

func TestDecoder_IndexOrderIndependence(t *testing.T) {
	forward := encodedBytes(t, NewEncoder().PutInt32(0, 1).PutString(1, "x").PutInt32(2, 3))
	backward := encodedBytes(t, NewEncoder().PutInt32(2, 3).PutString(1, "x").PutInt32(0, 1))

	for _, data := range [][]byte{forward, backward} {
		d, err := NewDecoder(data)
		require.NoError(t, err)
		require.Equal(t, int32(1), d.GetInt32(0))
		require.Equal(t, "x", d.GetString(1))
		require.Equal(t, int32(3), d.GetInt32(2))
	}
}

func TestDecoder_DuplicateIndexLastWins(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutInt32(0, 1).PutInt32(0, 2))
	require.Equal(t, int32(2), d.GetInt32(0))
}

func TestDecoder_BigIndexIgnoresLowNibble(t *testing.T) {
	// a producer must zero the low nibble, but the reader takes the second
	// byte regardless
	d, err := NewDecoder([]byte{byte(0x80) | 0x10 | 0x05, 42, 7})
	require.NoError(t, err)
	require.Equal(t, int32(7), d.GetInt32(42))
}

func TestDecoder_TruncatedInput(t *testing.T) {
	// NUM_8 tag with no payload byte
	d, err := NewDecoder([]byte{0x10})
	require.NoError(t, err)
	require.Equal(t, int32(0), d.GetInt32(0))
	require.ErrorIs(t, d.Err(), errs.ErrOutOfBound)
}

func TestDecoder_PayloadOverrun(t *testing.T) {
	// VAR_8 length claims more bytes than remain
	d, err := NewDecoder([]byte{0x50, 0x05, 'a'})
	require.NoError(t, err)
	require.Equal(t, "", d.GetString(0))
	require.ErrorIs(t, d.Err(), errs.ErrOutOfBound)
}

func TestDecoder_InvalidArrayLength(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutBytes(0, []byte{1, 2, 3, 4, 5}))
	require.Nil(t, d.GetInt32Array(0))
	require.ErrorIs(t, d.Err(), errs.ErrInvalidArrayLength)
}

func TestDecoder_CustomField(t *testing.T) {
	e := NewEncoder()
	w := e.PutCustom(2, 8)
	require.NotNil(t, w)
	w.WriteInt32(99)
	w.WriteFloat32(0.5)

	d := decoderFor(t, e)
	r := d.GetCustom(2)
	require.NotNil(t, r)
	got, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(99), got)
	f, err := r.ReadFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(0.5), f)
}

func TestDecoder_GetBytes(t *testing.T) {
	src := []byte{9, 8, 7}
	d := decoderFor(t, NewEncoder().PutBytes(1, src))
	got := d.GetBytes(1)
	require.Equal(t, src, got)

	// decoded bytes are a copy owned by the caller
	got[0] = 0
	require.Equal(t, src, d.GetBytes(1))

	d = decoderFor(t, NewEncoder().PutBytes(1, []byte{}))
	require.NotNil(t, d.GetBytes(1))
	require.Empty(t, d.GetBytes(1))
}

func TestUnmarshal_PropagatesDecodeError(t *testing.T) {
	_, err := Unmarshal([]byte{0x10}, func(d *Decoder) int32 {
		return d.GetInt32(0)
	})
	require.ErrorIs(t, err, errs.ErrOutOfBound)
}

func TestMarshalUnmarshal(t *testing.T) {
	blob := &fixedBlob{payload: "abc"}
	data, err := Marshal(blob)
	require.NoError(t, err)

	got, err := Unmarshal(data, func(d *Decoder) *fixedBlob {
		return &fixedBlob{payload: d.GetString(0)}
	})
	require.NoError(t, err)
	require.Equal(t, blob, got)
}
