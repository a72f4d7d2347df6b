package cbm

import "strings"

// PadByte is the shifted space used to pad names on disk
const PadByte = 0xA0

// PETSCIIToASCII converts a padded PETSCII field to ASCII, stopping at the first pad byte.
// Shifted letters map to upper case; anything without an ASCII counterpart becomes '?'.
func PETSCIIToASCII(field []byte) string {
	var sb strings.Builder
	sb.Grow(len(field))

	for _, b := range field {
		if b == PadByte {
			break
		}
		sb.WriteByte(petsciiChar(b))
	}
	return sb.String()
}

func petsciiChar(b byte) byte {
	switch {
	case b >= 0x20 && b <= 0x5F:
		return b
	case b >= 0xC1 && b <= 0xDA:
		return b - 0x80
	case b >= 0x61 && b <= 0x7A:
		// lower case in the shifted set
		return b
	default:
		return '?'
	}
}
