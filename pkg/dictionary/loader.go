package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Load validates the header of data and wraps it as a Dictionary. The
// dictionary keeps data for its lifetime; the caller must not modify it.
func Load(data []byte) (*Dictionary, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("Dictionary loaded: version %d, %d bytes", header.Version, len(data))
	return &Dictionary{data: data, header: header}, nil
}

// LoadReader reads r to the end and loads the result.
func LoadReader(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return Load(data)
}

// LoadFile reads and loads the dictionary at path.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	dict, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return dict, nil
}
