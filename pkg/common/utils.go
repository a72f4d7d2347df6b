package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ValidateMagic checks that data starts with the given signature
func ValidateMagic(data []byte, magic string) error {
	if !bytes.HasPrefix(data, []byte(magic)) {
		n := min(len(data), len(magic))
		return fmt.Errorf("%s: expected '%s', got '%s'", ErrInvalidMagic, magic, string(data[:n]))
	}
	return nil
}

// ReadUint16LE reads a uint16 in little-endian format
func ReadUint16LE(reader io.Reader) (uint16, error) {
	var value uint16
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// WriteFile writes data to path, creating missing parent directories
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return FormatError(ErrFailedToCreateOutputDir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return FormatError(ErrFailedToWriteFile, err)
	}
	return nil
}
