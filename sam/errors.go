package sam

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic           = errors.New("not a sam file")
	ErrUnsupportedVersion = errors.New("unsupported sam version")
	ErrTruncated          = errors.New("unexpected end of data")
	ErrNoFrames           = errors.New("definition has no frames")
	ErrSpriteUnresolved   = errors.New("cannot resolve sprite")
	ErrInvalidDefinition  = errors.New("invalid definition")
)

// DecodeError is returned for any failure while decoding a definition.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode sam at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
