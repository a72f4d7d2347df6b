package cbm

// Image sizes of the sector dump variants
const (
	D64Size35       = 174848 // 683 sectors
	D64Size35Errors = 175531 // 683 sectors + 683 error bytes
	D64Size40       = 196608 // 768 sectors
	D64Size40Errors = 197376 // 768 sectors + 768 error bytes
)

// sectorDump is a plain .d64 image: sectors stored back to back in geometry order,
// optionally followed by one error byte per sector.
type sectorDump struct {
	*image
}

func newSectorDump(name string, format Format, geometry *Geometry, data []byte) *sectorDump {
	img := &image{
		name:     name,
		format:   format,
		geometry: geometry,
		data:     data,
	}

	size := geometry.ImageSize()
	if len(data) > size {
		img.data = data[:size:size]
		if len(data) == size+geometry.TotalSectors() {
			img.errorInfo = data[size:]
		}
	}

	return &sectorDump{image: img}
}
