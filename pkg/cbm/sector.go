package cbm

import "fmt"

// TrackSector addresses one sector of a disk
type TrackSector struct {
	Track  uint8
	Sector uint8
}

// TS is shorthand for TrackSector{track, sector}
func TS(track, sector uint8) TrackSector {
	return TrackSector{Track: track, Sector: sector}
}

func (ts TrackSector) String() string {
	return fmt.Sprintf("[T:%d S:%d]", ts.Track, ts.Sector)
}

// Sector is a read-only view of one 256-byte sector inside a loaded image.
// The first two bytes link to the next sector of a chain.
type Sector struct {
	ts  TrackSector
	raw []byte
}

// TrackSector returns the sector's own coordinate
func (s *Sector) TrackSector() TrackSector {
	return s.ts
}

// Raw returns all 256 bytes of the sector. The slice must not be modified.
func (s *Sector) Raw() []byte {
	return s.raw
}

// Next returns the linked sector. ok is false when this is the last sector of a chain.
func (s *Sector) Next() (next TrackSector, ok bool) {
	if s.raw[0] == 0 {
		return TrackSector{}, false
	}
	return TrackSector{Track: s.raw[0], Sector: s.raw[1]}, true
}

// IsLast reports whether the link track byte terminates the chain
func (s *Sector) IsLast() bool {
	return s.raw[0] == 0
}

// Data returns the payload of the sector. In the last sector of a chain
// the second link byte is the index of the last used byte.
func (s *Sector) Data() []byte {
	if !s.IsLast() {
		return s.raw[2:]
	}
	last := int(s.raw[1])
	if last < 2 {
		return s.raw[2:2]
	}
	return s.raw[2 : last+1]
}

func (s *Sector) String() string {
	if next, ok := s.Next(); ok {
		return fmt.Sprintf("sector%s -> %s", s.ts, next)
	}
	return fmt.Sprintf("sector%s last, %d bytes", s.ts, len(s.Data()))
}
