// This file contains the Disk interface and the image core shared by all disk variants.
package cbm

import "fmt"

// Format identifies the container a disk was loaded from
type Format int

const (
	FormatD64               Format = iota // 35-track sector dump
	FormatD64Errors                       // 35-track sector dump with error info block
	FormatD64Extended                     // 40-track sector dump
	FormatD64ExtendedErrors               // 40-track sector dump with error info block
	FormatNibbleCapture                   // raw 4-bit sample capture (NIBCAP64)
)

func (f Format) String() string {
	switch f {
	case FormatD64:
		return "D64"
	case FormatD64Errors:
		return "D64 (error info)"
	case FormatD64Extended:
		return "D64 (40 tracks)"
	case FormatD64ExtendedErrors:
		return "D64 (40 tracks, error info)"
	case FormatNibbleCapture:
		return "NIBCAP64"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Disk is a loaded, read-only disk image.
// Implementations are safe for concurrent use; image bytes never change after loading.
type Disk interface {
	Format() Format
	Geometry() *Geometry
	ReadSector(ts TrackSector) (*Sector, error)
	Directory() (*Directory, error)
	FileChain(ts TrackSector) *FileChain
	SectorErrorCode(ts TrackSector) (byte, bool)
}

// image owns the canonical sector bytes of a disk in geometry order
type image struct {
	name      string
	format    Format
	geometry  *Geometry
	data      []byte // may be shorter than geometry.ImageSize() for truncated images
	errorInfo []byte // one status byte per sector, nil when absent
}

func (img *image) Format() Format {
	return img.format
}

func (img *image) Geometry() *Geometry {
	return img.geometry
}

// Name returns the name the image was loaded under
func (img *image) Name() string {
	return img.name
}

// ReadSector returns a view of the sector at ts
func (img *image) ReadSector(ts TrackSector) (*Sector, error) {
	offset, err := img.geometry.Offset(ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, ts)
	}
	end := offset + SectorSize
	if end > len(img.data) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, image has %d", ErrTruncatedImage, ts, end, len(img.data))
	}
	return &Sector{ts: ts, raw: img.data[offset:end:end]}, nil
}

func (img *image) FileChain(ts TrackSector) *FileChain {
	return newFileChain(img, ts, newChainGuard(img.geometry, "file", 0))
}

func (img *image) Directory() (*Directory, error) {
	return readDirectory(img)
}

// SectorErrorCode returns the drive status byte recorded for ts.
// ok is false when the image carries no error info or ts is outside the geometry.
func (img *image) SectorErrorCode(ts TrackSector) (byte, bool) {
	if img.errorInfo == nil {
		return 0, false
	}
	index, err := img.geometry.SectorIndex(ts)
	if err != nil || index >= len(img.errorInfo) {
		return 0, false
	}
	return img.errorInfo[index], true
}

func (img *image) canonical() *image {
	return img
}

// CanonicalBytes returns a copy of the sector dump of d in geometry order.
// Sectors missing from a truncated image are zero filled.
// It returns nil for Disk implementations outside this package.
func CanonicalBytes(d Disk) []byte {
	c, ok := d.(interface{ canonical() *image })
	if !ok {
		return nil
	}
	img := c.canonical()
	out := make([]byte, img.geometry.ImageSize())
	copy(out, img.data)
	return out
}
