// Package compress provides optional envelope codecs for marshaled records.
//
// The packrec wire format never compresses itself; its savings come from
// width selection and bit packing alone, and the bytes produced by
// pack.Marshal are bit-exact regardless of transport. When records travel
// over a network or sit in cold storage, callers can still wrap the
// marshaled bytes in one of these codecs:
//
//	data, _ := pack.Marshal(record)
//	stored, _ := compress.NewZstdCodec().Compress(data)
//	...
//	data, _ = compress.NewZstdCodec().Decompress(stored)
//	record, _ = pack.Unmarshal(data, decodeRecord)
//
// Both sides must agree on the codec, just as they agree on the record type.
package compress

// Compressor compresses a marshaled record for transport or storage.
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores bytes produced by the matching Compressor.
// The returned slice is owned by the caller; the input is not modified.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All implementations in this package are
// stateless values, safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}
