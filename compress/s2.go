package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/packrec/internal/pool"
)

// S2Codec compresses record envelopes with S2, the Snappy-compatible format
// tuned for throughput over ratio. A good default for hot-path transport.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates an S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress compresses data with S2, staging through a pooled scratch buffer
// so the worst-case destination is not allocated per call.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	scratch := pool.GetScratch(s2.MaxEncodedLen(len(data)))
	defer pool.PutScratch(scratch)

	encoded := s2.Encode(scratch.B, data)
	out := make([]byte, len(encoded))
	copy(out, encoded)

	return out, nil
}

// Decompress restores S2-compressed data.
func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
