// Package pack implements the packrec encoder and decoder engines.
//
// A record is a set of fields keyed by an application-assigned index in the
// range 0-255. The Encoder turns value-per-index writes into a compact byte
// string; the Decoder scans such a byte string once and then serves
// random-access reads per index. Field names never appear on the wire; the
// record type shared by producer and consumer is the unit of
// interoperability.
//
// Encoding a record type means implementing the Packable contract:
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
//	data, err := pack.Marshal(p)
//	q, err := pack.Unmarshal(data, decodePoint)
//
// Absent fields decode to zero values (or the explicit default of the Or
// getter variants); Contains distinguishes absence from a zero value.
//
// Put operations are chainable and record the first failure on the encoder;
// Bytes and Marshal report it. Decoder getters likewise record scan and read
// failures, returning defaults afterwards; Err and Unmarshal report them.
//
// Neither engine is safe for concurrent use by multiple goroutines. Decoded
// strings, slices and maps are copies owned by the caller and may be shared
// freely once decoding returns.
package pack
