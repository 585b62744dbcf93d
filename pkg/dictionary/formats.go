package dictionary

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Header layout, all big-endian:
//
//	0  4  magic number
//	4  2  format version
//	6  2  option flags (unused)
//	8  4  header size (unused, the fixed size below is always skipped)
const (
	MagicNumber = 0x9BC13AFE
	Version100  = 100
	HeaderSize  = 12

	// FileExtension is what ValidateFile expects on dictionary files.
	FileExtension = ".dict"
)

// PtNode flag bits.
const (
	maskChildrenAddressType = 0xC0
	addressTypeNone         = 0x00
	addressTypeOneByte      = 0x40
	addressTypeTwoBytes     = 0x80
	addressTypeThreeBytes   = 0xC0

	FlagHasMultipleChars     = 0x20
	FlagIsTerminal           = 0x10
	FlagHasShortcuts         = 0x08
	FlagHasBigrams           = 0x04
	FlagIsNotAWord           = 0x02
	FlagHasCachedSuggestions = 0x01
)

// Attribute byte of a shortcut or cached suggestion entry.
const (
	FlagAttrHasNext   = 0x80
	MaskAttrFrequency = 0x0F
)

const (
	// CharTerminator ends a multi-char run or an encoded string.
	CharTerminator = 0x1F

	minOneByteChar = 0x20
	maxOneByteChar = 0xFF

	maxOneByteNodeCount = 0x7F
	listSizeFieldSize   = 2

	MaxTerminalFrequency = 255
	MaxShortcutFrequency = 15

	// MaxSuggestions caps every suggestion list returned by a query.
	MaxSuggestions = 10
)

// Header is the validated fixed-size file header.
type Header struct {
	Magic       uint32
	Version     int
	OptionFlags int
	Size        int
}

// parseHeader validates the magic number and version at the front of data.
func parseHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, fmt.Errorf("%w: buffer holds only %d bytes", ErrInvalidMagic, len(data))
	}
	magic := binary.BigEndian.Uint32(data)
	if magic != MagicNumber {
		return Header{}, fmt.Errorf("%w: got 0x%08X", ErrInvalidMagic, magic)
	}
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrOutOfRange, HeaderSize, len(data))
	}
	version, _ := readUint16(data, 4)
	if version != Version100 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags, _ := readUint16(data, 6)
	size, _ := readUint32(data, 8)
	return Header{
		Magic:       magic,
		Version:     version,
		OptionFlags: flags,
		Size:        int(size),
	}, nil
}

// ValidateFile checks the extension and header of a dictionary file without
// reading the whole file.
func ValidateFile(filename string) (Header, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != FileExtension {
		return Header{}, fmt.Errorf("file %s has invalid extension %q (expected %s)", filename, ext, FileExtension)
	}

	file, err := os.Open(filename)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer file.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Header{}, fmt.Errorf("%w: reading header of %s: %v", ErrIO, filename, err)
	}
	header, err := parseHeader(buf[:n])
	if err != nil {
		return Header{}, fmt.Errorf("file %s: %w", filename, err)
	}

	log.Debugf("Dictionary file %s validated: version %d", filename, header.Version)
	return header, nil
}
