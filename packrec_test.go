package packrec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/packrec"
	"github.com/arloliu/packrec/pack"
)

type sample struct {
	Name   string
	Count  int32
	Ratio  float64
	Tags   []string
	Scores []int32
}

func (s *sample) Encode(e *pack.Encoder) {
	e.PutString(0, s.Name).
		PutInt32(1, s.Count).
		PutCDouble(2, s.Ratio).
		PutStringArray(3, s.Tags).
		PutCompactInt32Array(4, s.Scores)
}

func decodeSample(d *pack.Decoder) *sample {
	return &sample{
		Name:   d.GetString(0),
		Count:  d.GetInt32(1),
		Ratio:  d.GetCDouble(2),
		Tags:   d.GetStringArray(3),
		Scores: d.GetCompactInt32Array(4),
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	in := &sample{
		Name:   "metrics",
		Count:  12,
		Ratio:  0.5,
		Tags:   []string{"a", "b"},
		Scores: []int32{0, 5, 300, 0, 70000},
	}

	data, err := packrec.Marshal(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out, err := packrec.Unmarshal(data, decodeSample)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncoderDecoderWrappers(t *testing.T) {
	e := packrec.NewEncoder()
	e.PutInt32(0, 7)
	data, err := e.Bytes()
	require.NoError(t, err)

	d, err := packrec.NewDecoder(data)
	require.NoError(t, err)
	require.Equal(t, int32(7), d.GetInt32(0))
}

func TestChecksum(t *testing.T) {
	data, err := packrec.Marshal(&sample{Name: "x"})
	require.NoError(t, err)

	sum := packrec.Checksum(data)
	require.NotZero(t, sum)
	require.Equal(t, sum, packrec.Checksum(data))

	flipped := append([]byte(nil), data...)
	flipped[0] ^= 0x01
	require.NotEqual(t, sum, packrec.Checksum(flipped))
}
