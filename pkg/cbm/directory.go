// This file contains the disk header (track 18 sector 0) and the directory facade.
package cbm

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/hansbonini/cbmtools/pkg/common"
)

const (
	bamTracks       = 35 // the header BAM covers tracks 1-35 only
	dosVersionA     = 0x41
	dosVersionBlank = 0x00
)

// headerRecord is the layout of the header sector
type headerRecord struct {
	FirstDirTrack  uint8 // may be anything, not trusted blindly
	FirstDirSector uint8
	DOSVersion     uint8
	Unused1        uint8
	BAM            [bamTracks * 4]byte // free count + 3 bitmap bytes per track
	DiskName       [16]byte
	Unused2        [2]byte
	DiskID         [3]byte // two id chars + filler
	DOSType        [2]byte
	Unused3        [89]byte
}

// Directory exposes the header fields of a disk and the directory entry chain
type Directory struct {
	img    *image
	header headerRecord
}

func readDirectory(img *image) (*Directory, error) {
	sector, err := img.ReadSector(TS(DirTrack, HeaderSector))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderUnreadable, err)
	}

	dir := &Directory{img: img}
	if err := restruct.Unpack(sector.Raw(), binary.LittleEndian, &dir.header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderUnreadable, err)
	}
	return dir, nil
}

// DiskName returns the disk name, up to 16 characters
func (d *Directory) DiskName() string {
	return PETSCIIToASCII(d.header.DiskName[:])
}

// DiskID returns the two id characters and the filler byte, e.g. "S1 "
func (d *Directory) DiskID() string {
	return PETSCIIToASCII(d.header.DiskID[:])
}

// DOSType returns the format tag, usually "2A"
func (d *Directory) DOSType() string {
	return PETSCIIToASCII(d.header.DOSType[:])
}

// DOSVersion returns the raw DOS version byte ('A' on a regular disk)
func (d *Directory) DOSVersion() byte {
	return d.header.DOSVersion
}

// SoftWriteProtected reports whether the DOS version byte locks the disk against writes
func (d *Directory) SoftWriteProtected() bool {
	v := d.header.DOSVersion
	return v != dosVersionA && v != dosVersionBlank
}

// FirstDirSector returns the directory pointer stored in the header
func (d *Directory) FirstDirSector() TrackSector {
	return TS(d.header.FirstDirTrack, d.header.FirstDirSector)
}

// FreeBlocks sums the BAM free counters, leaving out the directory track
func (d *Directory) FreeBlocks() int {
	free := 0
	for track := 1; track <= bamTracks; track++ {
		if track == DirTrack {
			continue
		}
		free += int(d.header.BAM[(track-1)*4])
	}
	return free
}

// DirEntryChain returns a new cursor over all directory slots.
// The walk starts at the header pointer when it addresses a directory sector,
// otherwise at the conventional first directory sector.
func (d *Directory) DirEntryChain() *DirEntryChain {
	start := d.FirstDirSector()
	if start.Track != DirTrack || start.Sector == HeaderSector || !d.img.geometry.Contains(start) {
		common.LogWarn(common.WarnBadDirectoryPointer, start, TS(DirTrack, FirstDirSector))
		start = TS(DirTrack, FirstDirSector)
	}

	guard := newChainGuard(d.img.geometry, "directory", DirTrack)
	return &DirEntryChain{chain: newFileChain(d.img, start, guard)}
}
