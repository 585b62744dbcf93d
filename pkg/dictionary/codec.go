package dictionary

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// noChar is returned by readChar for the run terminator.
const noChar rune = -1

// Every reader takes the buffer and an offset and returns the decoded value
// with the offset that follows it. Nothing is kept between calls.

func need(buf []byte, pos, n int) error {
	if pos < 0 || pos+n > len(buf) {
		return fmt.Errorf("%w: %d bytes at offset %d, buffer has %d", ErrOutOfRange, n, pos, len(buf))
	}
	return nil
}

func readUint8(buf []byte, pos int) (int, error) {
	if err := need(buf, pos, 1); err != nil {
		return 0, err
	}
	return int(buf[pos]), nil
}

func readUint16(buf []byte, pos int) (int, error) {
	if err := need(buf, pos, 2); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(buf[pos:])), nil
}

func readUint24(buf []byte, pos int) (int, error) {
	if err := need(buf, pos, 3); err != nil {
		return 0, err
	}
	return int(buf[pos])<<16 | int(buf[pos+1])<<8 | int(buf[pos+2]), nil
}

func readUint32(buf []byte, pos int) (uint32, error) {
	if err := need(buf, pos, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[pos:]), nil
}

// readNodeCount reads the sibling count of a node array. Counts up to 127 take
// one byte; larger ones set the high bit and spill into a second byte.
func readNodeCount(buf []byte, pos int) (count, next int, err error) {
	msb, err := readUint8(buf, pos)
	if err != nil {
		return 0, pos, err
	}
	if msb <= maxOneByteNodeCount {
		return msb, pos + 1, nil
	}
	lsb, err := readUint8(buf, pos+1)
	if err != nil {
		return 0, pos, err
	}
	return (msb&maxOneByteNodeCount)<<8 | lsb, pos + 2, nil
}

// readChar decodes one character. Bytes in 0x20..0xFF are latin-1 code
// points, 0x1F is the terminator and anything else opens a 3-byte code point.
func readChar(buf []byte, pos int) (rune, int, error) {
	b, err := readUint8(buf, pos)
	if err != nil {
		return noChar, pos, err
	}
	if b >= minOneByteChar && b <= maxOneByteChar {
		return rune(b), pos + 1, nil
	}
	if b == CharTerminator {
		return noChar, pos + 1, nil
	}
	c, err := readUint24(buf, pos)
	if err != nil {
		return noChar, pos, err
	}
	return rune(c), pos + 3, nil
}

// readString reads characters up to and including the terminator.
func readString(buf []byte, pos int) (string, int, error) {
	var sb strings.Builder
	for {
		c, next, err := readChar(buf, pos)
		if err != nil {
			return "", pos, err
		}
		pos = next
		if c == noChar {
			return sb.String(), pos, nil
		}
		sb.WriteRune(c)
	}
}
