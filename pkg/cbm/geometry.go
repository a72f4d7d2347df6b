// Package cbm provides read access to Commodore 1541 floppy disk images.
// This file contains the track/sector geometry of the 1541 disk family.
package cbm

import "fmt"

// Sector and directory layout constants for 1541 disks
const (
	SectorSize          = 256 // Full sector size in bytes
	SectorDataSize      = 254 // Payload bytes per sector (after the 2-byte link)
	DirTrack            = 18  // Track holding the header (BAM) and the directory
	HeaderSector        = 0   // Header sector on the directory track
	FirstDirSector      = 1   // Conventional first directory sector
	DirEntrySize        = 32  // Size of one directory record
	DirEntriesPerSector = SectorSize / DirEntrySize
)

// zone is a run of consecutive tracks sharing the same sector count
type zone struct {
	FirstTrack int
	LastTrack  int
	Sectors    int
}

// Geometry maps track numbers to their sector counts.
// Tracks are 1-indexed, sectors are 0-indexed.
type Geometry struct {
	name    string
	zones   []zone
	offsets []int // offsets[track] = index of the first sector of track, offsets[tracks+1] = total
}

// D64Geometry35 is the standard 35-track 1541 layout (683 sectors)
var D64Geometry35 = newGeometry("35 tracks", []zone{
	{1, 17, 21},
	{18, 24, 19},
	{25, 30, 18},
	{31, 35, 17},
})

// D64Geometry40 is the extended 40-track layout (768 sectors)
var D64Geometry40 = newGeometry("40 tracks", []zone{
	{1, 17, 21},
	{18, 24, 19},
	{25, 30, 18},
	{31, 40, 17},
})

func newGeometry(name string, zones []zone) *Geometry {
	tracks := zones[len(zones)-1].LastTrack
	g := &Geometry{
		name:    name,
		zones:   zones,
		offsets: make([]int, tracks+2),
	}

	index := 0
	for track := 1; track <= tracks; track++ {
		g.offsets[track] = index
		index += g.sectorsAt(track)
	}
	g.offsets[tracks+1] = index

	return g
}

func (g *Geometry) sectorsAt(track int) int {
	for _, z := range g.zones {
		if track >= z.FirstTrack && track <= z.LastTrack {
			return z.Sectors
		}
	}
	return 0
}

// Tracks returns the number of tracks
func (g *Geometry) Tracks() int {
	return g.zones[len(g.zones)-1].LastTrack
}

// TotalSectors returns the number of sectors over all tracks
func (g *Geometry) TotalSectors() int {
	return g.offsets[g.Tracks()+1]
}

// ImageSize returns the size of a plain sector dump with this geometry
func (g *Geometry) ImageSize() int {
	return g.TotalSectors() * SectorSize
}

// SectorsPerTrack returns the number of sectors on track.
// It fails with ErrGeometry when track is outside 1..Tracks().
func (g *Geometry) SectorsPerTrack(track int) (int, error) {
	if track < 1 || track > g.Tracks() {
		return 0, fmt.Errorf("%w: track %d not in 1..%d", ErrGeometry, track, g.Tracks())
	}
	return g.sectorsAt(track), nil
}

// Contains reports whether ts addresses an existing sector
func (g *Geometry) Contains(ts TrackSector) bool {
	count, err := g.SectorsPerTrack(int(ts.Track))
	if err != nil {
		return false
	}
	return int(ts.Sector) < count
}

// SectorIndex returns the linear index of ts in geometry order
func (g *Geometry) SectorIndex(ts TrackSector) (int, error) {
	count, err := g.SectorsPerTrack(int(ts.Track))
	if err != nil {
		return 0, err
	}
	if int(ts.Sector) >= count {
		return 0, fmt.Errorf("%w: sector %d not in 0..%d on track %d", ErrGeometry, ts.Sector, count-1, ts.Track)
	}
	return g.offsets[ts.Track] + int(ts.Sector), nil
}

// TrackOffset returns the byte offset of sector 0 of track
func (g *Geometry) TrackOffset(track int) (int, error) {
	if _, err := g.SectorsPerTrack(track); err != nil {
		return 0, err
	}
	return g.offsets[track] * SectorSize, nil
}

// Offset returns the byte offset of ts inside a canonical sector dump
func (g *Geometry) Offset(ts TrackSector) (int, error) {
	index, err := g.SectorIndex(ts)
	if err != nil {
		return 0, err
	}
	return index * SectorSize, nil
}

// String returns a short description such as "35 tracks"
func (g *Geometry) String() string {
	return g.name
}
