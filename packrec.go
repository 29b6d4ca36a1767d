// Package packrec provides a compact binary serialization codec for
// structured records.
//
// A record is a set of fields keyed by a small integer index (0-255) that
// the application assigns; no field names, schema registry or code
// generation are involved. The codec encodes scalars, strings, nested
// records, homogeneous arrays and a small set of keyed containers, and
// decodes them back by random-access field lookup. It is designed to be
// materially smaller and faster than comparable tag-length-value formats
// for the common case of small integers, sparse fields and numeric arrays.
//
// # Core Features
//
//   - 1-2 byte field tags; zero-valued scalars cost the tag alone
//   - Scalar width compression: each value takes the narrowest of 1/2/4/8 bytes
//   - Bit-packed boolean and enum arrays, width-compressed numeric arrays
//   - Compact doubles via word-reversal of the IEEE-754 bit pattern
//   - Nested records with single-byte lengths for small payloads
//   - Random-access decoding from a single scan, no per-field allocation
//   - Unknown indices are skipped; absent indices decode to defaults
//
// # Basic Usage
//
// A record type joins the codec by implementing the Packable contract:
//
//	type Point struct{ X, Y int32 }
//
//	func (p *Point) Encode(e *pack.Encoder) {
//	    e.PutInt32(0, p.X).PutInt32(1, p.Y)
//	}
//
//	func decodePoint(d *pack.Decoder) *Point {
//	    return &Point{X: d.GetInt32(0), Y: d.GetInt32(1)}
//	}
//
//	data, err := packrec.Marshal(p)
//	q, err := packrec.Unmarshal(data, decodePoint)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the pack
// package, which holds the encoder and decoder engines. The compress
// package offers optional envelope codecs for transport and storage; the
// wire format itself is never compressed or versioned — the record type
// shared by producer and consumer is the unit of interoperability.
package packrec

import (
	"github.com/arloliu/packrec/internal/hash"
	"github.com/arloliu/packrec/pack"
)

// Marshal encodes p into a fresh byte slice.
//
// It constructs an encoder, invokes p.Encode and returns the produced
// bytes, or the first error the encode recorded (for example a record
// growing past the buffer size limit).
func Marshal(p pack.Packable) ([]byte, error) {
	return pack.Marshal(p)
}

// Unmarshal decodes one record from data using decode.
//
// The data slice must hold exactly one encoded record. Absent fields are
// not errors — decode sees their defaults; corrupted input surfaces as the
// returned error.
func Unmarshal[T any](data []byte, decode pack.DecodeFunc[T]) (T, error) {
	return pack.Unmarshal(data, decode)
}

// NewEncoder creates an encoder for callers that drive field writes
// directly instead of going through Marshal.
func NewEncoder() *pack.Encoder {
	return pack.NewEncoder()
}

// NewDecoder creates a decoder over one encoded record for callers that
// drive field reads directly instead of going through Unmarshal.
func NewDecoder(data []byte) (*pack.Decoder, error) {
	return pack.NewDecoder(data)
}

// Checksum computes the xxHash64 of an encoded record.
//
// The wire format carries no magic number or checksum of its own; callers
// that store records and want cheap corruption detection can keep this
// value alongside the bytes and verify it before decoding.
func Checksum(data []byte) uint64 {
	return hash.Sum(data)
}
