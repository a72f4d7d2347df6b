package cbm

// Normalize scales a 4-bit capture sample onto the full byte range.
// Values that would reach 256 or more are clamped to 255 instead of wrapping.
func Normalize(raw byte) byte {
	scaled := int(raw) * 16
	if scaled > 0xFF {
		return 0xFF
	}
	return byte(scaled)
}

// NormalizeSamples applies Normalize to every byte of src and stores the result in dst.
// dst must be at least as long as src.
func NormalizeSamples(dst, src []byte) {
	for i, b := range src {
		dst[i] = Normalize(b)
	}
}
