package pack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitiveArrays_RoundTrip(t *testing.T) {
	ints := []int32{1, -2, 3 << 20, 0, 42, -1 << 31}
	longs := []int64{1, -2, 1 << 50, 0}
	floats := []float32{0, 1.5, -2.25, 3e7, 0.125}
	doubles := []float64{0, 1.5, -2.25, 3e16, 0.1}

	e := NewEncoder().
		PutInt32Array(0, ints).
		PutInt64Array(1, longs).
		PutFloat32Array(2, floats).
		PutFloat64Array(3, doubles)
	d := decoderFor(t, e)

	require.Equal(t, ints, d.GetInt32Array(0))
	require.Equal(t, longs, d.GetInt64Array(1))
	require.Equal(t, floats, d.GetFloat32Array(2))
	require.Equal(t, doubles, d.GetFloat64Array(3))
	require.NoError(t, d.Err())
}

func TestPrimitiveArrays_ShortAndEmpty(t *testing.T) {
	// short arrays take the element-by-element path
	d := decoderFor(t, NewEncoder().
		PutInt32Array(0, []int32{7}).
		PutInt64Array(1, []int64{-7}).
		PutFloat32Array(2, []float32{}).
		PutFloat64Array(3, []float64{0.5}))

	require.Equal(t, []int32{7}, d.GetInt32Array(0))
	require.Equal(t, []int64{-7}, d.GetInt64Array(1))
	require.Empty(t, d.GetFloat32Array(2))
	require.NotNil(t, d.GetFloat32Array(2))
	require.Equal(t, []float64{0.5}, d.GetFloat64Array(3))
}

func TestStringArray_RoundTrip(t *testing.T) {
	value := []string{"alpha", "", "gamma", strings.Repeat("d", 300)}
	d := decoderFor(t, NewEncoder().PutStringArray(0, value))
	require.Equal(t, value, d.GetStringArray(0))

	empty := decoderFor(t, NewEncoder().PutStringArray(0, []string{}))
	require.NotNil(t, empty.GetStringArray(0))
	require.Empty(t, empty.GetStringArray(0))
}

func TestStringPtrArray_NullPreserving(t *testing.T) {
	a, c := "a", "c"
	value := []*string{&a, nil, &c, nil}
	d := decoderFor(t, NewEncoder().PutStringPtrArray(0, value))

	got := d.GetStringPtrArray(0)
	require.Len(t, got, 4)
	require.Equal(t, "a", *got[0])
	require.Nil(t, got[1])
	require.Equal(t, "c", *got[2])
	require.Nil(t, got[3])

	// the non-preserving getter reads nulls as empty strings
	require.Equal(t, []string{"a", "", "c", ""}, d.GetStringArray(0))
}

type pair struct {
	K string
	V int32
}

func (p *pair) Encode(e *Encoder) {
	e.PutString(0, p.K).PutInt32(1, p.V)
}

func decodePair(d *Decoder) *pair {
	return &pair{K: d.GetString(0), V: d.GetInt32(1)}
}

func TestPackableArray_NullPreserving(t *testing.T) {
	value := []Packable{
		&pair{K: "one", V: 1},
		nil,
		&pair{K: "three", V: 3},
	}
	d := decoderFor(t, NewEncoder().PutPackableArray(0, value))

	got := GetPackableArray(d, 0, decodePair)
	require.Len(t, got, 3)
	require.Equal(t, &pair{K: "one", V: 1}, got[0])
	require.Nil(t, got[1])
	require.Equal(t, &pair{K: "three", V: 3}, got[2])
	require.NoError(t, d.Err())
}

func TestPackableArray_LargeElement(t *testing.T) {
	// an element past 32 KiB exercises the extended 16+16 bit length form
	big := &pair{K: strings.Repeat("k", 40000), V: 5}
	value := []Packable{big, nil, &pair{K: "s", V: 1}}
	d := decoderFor(t, NewEncoder().PutPackableArray(0, value))

	got := GetPackableArray(d, 0, decodePair)
	require.Len(t, got, 3)
	require.Equal(t, big, got[0])
	require.Nil(t, got[1])
	require.Equal(t, &pair{K: "s", V: 1}, got[2])
}

func TestDecoderArray_Streaming(t *testing.T) {
	value := []Packable{
		&pair{K: "one", V: 1},
		nil,
		&pair{K: "three", V: 3},
	}
	d := decoderFor(t, NewEncoder().PutPackableArray(0, value))

	arr := d.GetDecoderArray(0)
	require.NotNil(t, arr)
	require.Equal(t, 3, arr.Count())

	var got []*pair
	for arr.HasNext() {
		child, err := arr.Next()
		require.NoError(t, err)
		if child == nil {
			got = append(got, nil)
			continue
		}
		got = append(got, decodePair(child))
	}
	require.Equal(t, []*pair{{K: "one", V: 1}, nil, {K: "three", V: 3}}, got)
}

func TestDecoderArray_All(t *testing.T) {
	value := []Packable{&pair{K: "a", V: 1}, nil, &pair{K: "b", V: 2}}
	d := decoderFor(t, NewEncoder().PutPackableArray(0, value))

	var keys []string
	for child := range d.GetDecoderArray(0).All() {
		if child == nil {
			keys = append(keys, "<null>")
			continue
		}
		keys = append(keys, child.GetString(0))
	}
	require.Equal(t, []string{"a", "<null>", "b"}, keys)
}

func TestNestedDecoder(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutPackable(0, &pair{K: "k", V: 9}))
	child := d.GetDecoder(0)
	require.NotNil(t, child)
	require.Equal(t, "k", child.GetString(0))
	require.Equal(t, int32(9), child.GetInt32(1))

	got, ok := GetPackable(d, 0, decodePair)
	require.True(t, ok)
	require.Equal(t, &pair{K: "k", V: 9}, got)

	_, ok = GetPackable(d, 1, decodePair)
	require.False(t, ok)
}

func TestMaps_RoundTrip(t *testing.T) {
	s2s := map[string]string{"a": "1", "b": "", "": "3"}
	s2i := map[string]int32{"x": -1, "y": 2}
	s2l := map[string]int64{"x": 1 << 40, "y": -2}
	s2f := map[string]float32{"x": 0.5}
	s2d := map[string]float64{"x": 0.25, "y": -1}
	i2i := map[int32]int32{1: 2, -3: 4}
	i2s := map[int32]string{1: "one", 2: ""}

	e := NewEncoder().
		PutStr2Str(0, s2s).
		PutStr2Int32(1, s2i).
		PutStr2Int64(2, s2l).
		PutStr2Float32(3, s2f).
		PutStr2Float64(4, s2d).
		PutInt2Int(5, i2i).
		PutInt2Str(6, i2s)
	d := decoderFor(t, e)

	require.Equal(t, s2s, d.GetStr2Str(0))
	require.Equal(t, s2i, d.GetStr2Int32(1))
	require.Equal(t, s2l, d.GetStr2Int64(2))
	require.Equal(t, s2f, d.GetStr2Float32(3))
	require.Equal(t, s2d, d.GetStr2Float64(4))
	require.Equal(t, i2i, d.GetInt2Int(5))
	require.Equal(t, i2s, d.GetInt2Str(6))
	require.NoError(t, d.Err())
}

func TestStr2Pack_RoundTrip(t *testing.T) {
	value := map[string]Packable{
		"first":  &pair{K: "f", V: 1},
		"second": nil,
	}
	d := decoderFor(t, NewEncoder().PutStr2Pack(0, value))

	got := GetStr2Pack(d, 0, decodePair)
	require.Len(t, got, 2)
	require.Equal(t, &pair{K: "f", V: 1}, got["first"])
	require.Nil(t, got["second"])
}

func TestMaps_Empty(t *testing.T) {
	d := decoderFor(t, NewEncoder().PutStr2Str(0, map[string]string{}))
	require.NotNil(t, d.GetStr2Str(0))
	require.Empty(t, d.GetStr2Str(0))
	require.Nil(t, d.GetStr2Str(1))
}
