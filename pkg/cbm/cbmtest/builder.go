// Package cbmtest builds synthetic 1541 disk images for tests.
package cbmtest

import (
	"github.com/hansbonini/cbmtools/pkg/cbm"
)

// Type bytes of closed files
const (
	TypeDEL = 0x80
	TypeSEQ = 0x81
	TypePRG = 0x82
	TypeUSR = 0x83
	TypeREL = 0x84
)

// Builder lays out a formatted disk in memory: header on 18/0, directory
// from 18/1 onwards and file data allocated sequentially outside track 18.
type Builder struct {
	Geometry *cbm.Geometry
	data     []byte
	used     map[cbm.TrackSector]bool
	dirs     []cbm.TrackSector // directory sectors in chain order
	slots    int               // slots used in the last directory sector
	next     cbm.TrackSector   // next candidate sector for file data
}

// New returns a blank formatted disk named "BLANK" with id "00"
func New(geometry *cbm.Geometry) *Builder {
	b := &Builder{
		Geometry: geometry,
		data:     make([]byte, geometry.ImageSize()),
		used:     make(map[cbm.TrackSector]bool),
		next:     cbm.TS(1, 0),
	}

	header := b.Sector(cbm.TS(cbm.DirTrack, cbm.HeaderSector))
	header[0] = cbm.DirTrack
	header[1] = cbm.FirstDirSector
	header[2] = 0x41
	for i := 0x90; i <= 0xAA; i++ {
		header[i] = cbm.PadByte
	}
	b.used[cbm.TS(cbm.DirTrack, cbm.HeaderSector)] = true
	b.SetHeader("BLANK", "00 ", "2A")

	b.addDirSector(cbm.TS(cbm.DirTrack, cbm.FirstDirSector))
	return b
}

// Sector returns the writable 256 bytes at ts. It panics when ts is outside the geometry.
func (b *Builder) Sector(ts cbm.TrackSector) []byte {
	offset, err := b.Geometry.Offset(ts)
	if err != nil {
		panic(err)
	}
	return b.data[offset : offset+cbm.SectorSize]
}

// SetHeader writes the disk name, the 3-byte id and the DOS type
func (b *Builder) SetHeader(name, id, dosType string) {
	header := b.Sector(cbm.TS(cbm.DirTrack, cbm.HeaderSector))
	writePadded(header[0x90:0xA0], name)
	writePadded(header[0xA2:0xA5], id)
	writePadded(header[0xA5:0xA7], dosType)
}

// SetDOSVersion overrides the DOS version byte of the header
func (b *Builder) SetDOSVersion(v byte) {
	b.Sector(cbm.TS(cbm.DirTrack, cbm.HeaderSector))[2] = v
}

// Link rewrites the link bytes of ts
func (b *Builder) Link(ts, next cbm.TrackSector) {
	raw := b.Sector(ts)
	raw[0] = next.Track
	raw[1] = next.Sector
}

// AddFile stores payload in a fresh sector chain and adds a directory slot for it.
// It returns the first sector of the chain.
func (b *Builder) AddFile(name string, typeByte byte, payload []byte) cbm.TrackSector {
	chunks := (len(payload) + cbm.SectorDataSize - 1) / cbm.SectorDataSize
	if chunks == 0 {
		chunks = 1
	}

	chain := make([]cbm.TrackSector, chunks)
	for i := range chain {
		chain[i] = b.allocate()
	}

	for i, ts := range chain {
		raw := b.Sector(ts)
		start := i * cbm.SectorDataSize
		end := min(start+cbm.SectorDataSize, len(payload))
		copy(raw[2:], payload[start:end])
		if i+1 < len(chain) {
			raw[0], raw[1] = chain[i+1].Track, chain[i+1].Sector
		} else {
			raw[0], raw[1] = 0, byte(end-start+1)
		}
	}

	b.AddEntry(name, typeByte, chain[0], uint16(chunks))
	return chain[0]
}

// AddEntry writes a directory slot without allocating file data
func (b *Builder) AddEntry(name string, typeByte byte, start cbm.TrackSector, blocks uint16) {
	if b.slots == cbm.DirEntriesPerSector {
		last := b.dirs[len(b.dirs)-1]
		b.addDirSector(cbm.TS(cbm.DirTrack, last.Sector+1))
	}

	raw := b.Sector(b.dirs[len(b.dirs)-1])
	entry := raw[b.slots*cbm.DirEntrySize : (b.slots+1)*cbm.DirEntrySize]
	entry[2] = typeByte
	entry[3], entry[4] = start.Track, start.Sector
	writePadded(entry[5:21], name)
	entry[30] = byte(blocks)
	entry[31] = byte(blocks >> 8)
	b.slots++
}

// DirSectors returns the directory sectors in chain order
func (b *Builder) DirSectors() []cbm.TrackSector {
	return append([]cbm.TrackSector(nil), b.dirs...)
}

// Bytes returns the image with the BAM updated for all allocated sectors
func (b *Builder) Bytes() []byte {
	header := b.Sector(cbm.TS(cbm.DirTrack, cbm.HeaderSector))
	for track := 1; track <= 35 && track <= b.Geometry.Tracks(); track++ {
		count, _ := b.Geometry.SectorsPerTrack(track)
		entry := header[4*track : 4*track+4]
		entry[0], entry[1], entry[2], entry[3] = 0, 0, 0, 0
		for s := 0; s < count; s++ {
			if b.used[cbm.TS(uint8(track), uint8(s))] {
				continue
			}
			entry[0]++
			entry[1+s/8] |= 1 << (s % 8)
		}
	}
	return append([]byte(nil), b.data...)
}

func (b *Builder) addDirSector(ts cbm.TrackSector) {
	if len(b.dirs) > 0 {
		b.Link(b.dirs[len(b.dirs)-1], ts)
	}
	b.dirs = append(b.dirs, ts)
	b.used[ts] = true
	b.slots = 0

	raw := b.Sector(ts)
	raw[0], raw[1] = 0, 0xFF
}

func (b *Builder) allocate() cbm.TrackSector {
	for {
		ts := b.next
		count, err := b.Geometry.SectorsPerTrack(int(ts.Track))
		if err != nil {
			panic("cbmtest: disk full")
		}
		if int(ts.Sector)+1 < count {
			b.next = cbm.TS(ts.Track, ts.Sector+1)
		} else {
			b.next = cbm.TS(ts.Track+1, 0)
		}
		if ts.Track == cbm.DirTrack || b.used[ts] {
			continue
		}
		b.used[ts] = true
		return ts
	}
}

func writePadded(dst []byte, s string) {
	for i := range dst {
		if i < len(s) {
			dst[i] = s[i]
		} else {
			dst[i] = cbm.PadByte
		}
	}
}
