package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/packrec/internal/pool"
)

// lz4CompressorPool pools lz4.Compressor instances; they keep internal
// state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses record envelopes with LZ4 block compression, the
// fastest of the offered codecs at the lowest ratio.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates an LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses data as a single LZ4 block, staging through a pooled
// scratch buffer sized to the block bound.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	scratch := pool.GetScratch(lz4.CompressBlockBound(len(data)))
	defer pool.PutScratch(scratch)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, scratch.B)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, scratch.B[:n])

	return out, nil
}

// Decompress restores a single LZ4 block. The destination grows by doubling
// until the block fits, since the block format does not carry the original
// size.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	size := len(data) * 4
	for {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(data, dst)
		if err == nil {
			return dst[:n], nil
		}
		if size > pool.ScratchMaxThreshold*16 {
			return nil, err
		}
		size *= 2
	}
}
