package pack

// Packable is the contract an application record type implements to be
// serialized. Encode writes the record's fields, each with a unique
// caller-assigned index in 0-255, in any order.
type Packable interface {
	Encode(e *Encoder)
}

// DecodeFunc builds a record value from a decoder, reading fields by index
// and applying defaults for absent ones. It is the read-side counterpart of
// Packable.Encode.
type DecodeFunc[T any] func(d *Decoder) T

// Marshal encodes p into a fresh byte slice.
func Marshal(p Packable) ([]byte, error) {
	e := NewEncoder()
	p.Encode(e)

	return e.Bytes()
}

// Unmarshal decodes one record from data using decode. It returns the
// decoded value together with any scan or read failure the decoder
// recorded along the way.
func Unmarshal[T any](data []byte, decode DecodeFunc[T]) (T, error) {
	d, err := NewDecoder(data)
	if err != nil {
		var zero T
		return zero, err
	}
	v := decode(d)

	return v, d.Err()
}
