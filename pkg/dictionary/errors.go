package dictionary

import "errors"

// Format errors. Decoders wrap these with position details, so callers should
// compare with errors.Is.
var (
	ErrInvalidMagic       = errors.New("invalid dictionary magic number")
	ErrUnsupportedVersion = errors.New("unsupported dictionary version")
	ErrSizeMismatch       = errors.New("declared list size does not match decoded entries")
	ErrMalformedAddress   = errors.New("children address out of range")
	ErrOutOfRange         = errors.New("read past end of dictionary buffer")
	ErrEmptyCharRun       = errors.New("node has no characters")
	ErrIO                 = errors.New("failed to read dictionary")
)
