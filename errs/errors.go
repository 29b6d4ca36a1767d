// Package errs defines the sentinel errors shared by the packrec engines.
//
// Callers match them with errors.Is; call sites add context by wrapping,
// e.g. fmt.Errorf("%w: array length %d", errs.ErrInvalidArrayLength, n).
package errs

import "errors"

var (
	// ErrOutOfBound indicates a read or write would cross the buffer limit.
	ErrOutOfBound = errors.New("buffer out of bound")

	// ErrInvalidPackData indicates the field scan did not consume exactly the
	// buffer window, i.e. the input is truncated or corrupted.
	ErrInvalidPackData = errors.New("invalid pack data")

	// ErrInvalidArrayLength indicates a primitive array's byte length is not a
	// multiple of its element width.
	ErrInvalidArrayLength = errors.New("invalid array length")

	// ErrInvalidSize indicates an object array or map count is negative or
	// exceeds format.MaxObjectArraySize.
	ErrInvalidSize = errors.New("invalid size of object array")

	// ErrCapacityOverflow indicates an encoder grow request would exceed
	// format.MaxBufferSize.
	ErrCapacityOverflow = errors.New("desired capacity over limit")

	// ErrEnumOverflow indicates an enum array element does not fit in 8 bits.
	ErrEnumOverflow = errors.New("enum value over 255")

	// ErrBitInfoOverflow indicates the header byte of a bit-packed array has
	// reserved bits set.
	ErrBitInfoOverflow = errors.New("bit info overflow")

	// ErrBufferSizeLimit indicates a decoder input larger than
	// format.MaxBufferSize.
	ErrBufferSizeLimit = errors.New("buffer size over limit")
)
