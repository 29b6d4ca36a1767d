package compress

// ZstdCodec compresses record envelopes with Zstandard. It trades
// compression speed for ratio, which suits archived or rarely-read records.
//
// Two implementations back it: the pure-Go klauspost encoder by default,
// and valyala/gozstd (cgo bindings to libzstd) when built with the gozstd
// tag and cgo enabled.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
