package cbm

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strings"

	"github.com/go-restruct/restruct"
)

// FileType is the CBM DOS file type stored in the low bits of the type byte
type FileType int

const (
	FileScratched FileType = iota
	FileDEL
	FileSEQ
	FilePRG
	FileUSR
	FileREL
	FileCBM
	FileUnknown
)

const (
	typeMask   = 0x07
	lockedFlag = 0x40
	closedFlag = 0x80
)

func (t FileType) String() string {
	switch t {
	case FileScratched:
		return "SCR"
	case FileDEL:
		return "DEL"
	case FileSEQ:
		return "SEQ"
	case FilePRG:
		return "PRG"
	case FileUSR:
		return "USR"
	case FileREL:
		return "REL"
	case FileCBM:
		return "CBM"
	default:
		return "???"
	}
}

// dirRecord is the 32-byte layout of one directory slot
type dirRecord struct {
	Link         [2]byte // only meaningful in the first slot of a sector
	TypeByte     uint8
	StartTrack   uint8
	StartSector  uint8
	Name         [16]byte
	SideTrack    uint8 // REL side sector
	SideSector   uint8
	RecordLength uint8 // REL record length
	Reserved     [6]byte
	Blocks       uint16
}

// DirEntry is one decoded directory slot
type DirEntry struct {
	Sector       TrackSector // directory sector holding the slot
	Slot         int         // 0..7 inside that sector
	TypeByte     byte
	Start        TrackSector
	Name         string
	RawName      [16]byte
	SideSector   TrackSector
	RecordLength byte
	Blocks       uint16
}

func decodeDirEntry(sector *Sector, slot int) (DirEntry, error) {
	offset := slot * DirEntrySize

	var rec dirRecord
	if err := restruct.Unpack(sector.Raw()[offset:offset+DirEntrySize], binary.LittleEndian, &rec); err != nil {
		return DirEntry{}, fmt.Errorf("directory slot %d of %s: %w", slot, sector.TrackSector(), err)
	}

	return DirEntry{
		Sector:       sector.TrackSector(),
		Slot:         slot,
		TypeByte:     rec.TypeByte,
		Start:        TS(rec.StartTrack, rec.StartSector),
		Name:         PETSCIIToASCII(rec.Name[:]),
		RawName:      rec.Name,
		SideSector:   TS(rec.SideTrack, rec.SideSector),
		RecordLength: rec.RecordLength,
		Blocks:       rec.Blocks,
	}, nil
}

// Type decodes the file type. A zero type byte marks a scratched slot.
func (e DirEntry) Type() FileType {
	if e.TypeByte == 0 {
		return FileScratched
	}
	switch e.TypeByte & typeMask {
	case 0:
		return FileDEL
	case 1:
		return FileSEQ
	case 2:
		return FilePRG
	case 3:
		return FileUSR
	case 4:
		return FileREL
	case 5:
		return FileCBM
	default:
		return FileUnknown
	}
}

// IsEmpty reports whether the slot is unused or scratched
func (e DirEntry) IsEmpty() bool {
	return e.TypeByte == 0
}

// IsLocked reports the lock flag, shown as '<' in a listing
func (e DirEntry) IsLocked() bool {
	return e.TypeByte&lockedFlag != 0
}

// IsClosed reports the closed flag. Unclosed files are shown as '*' in a listing.
func (e DirEntry) IsClosed() bool {
	return e.TypeByte&closedFlag != 0
}

func (e DirEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "file[ %s, %d blocks, %s", e.Name, e.Blocks, e.Type())
	if !e.IsClosed() {
		sb.WriteByte('*')
	}
	if e.IsLocked() {
		sb.WriteByte('<')
	}
	sb.WriteByte(']')
	return sb.String()
}

// DirEntryChain is a forward-only cursor over every slot of the directory,
// empty and scratched slots included.
type DirEntryChain struct {
	chain  *FileChain
	sector *Sector
	slot   int
}

// HasNextDirEntry reports whether NextDirEntry will return an entry. It has no side effects.
func (c *DirEntryChain) HasNextDirEntry() bool {
	if c.sector != nil && c.slot < DirEntriesPerSector {
		return true
	}
	return c.chain.HasNextSector()
}

// NextDirEntry returns the next slot, loading the next directory sector when needed.
// It returns ErrEndOfChain when the directory is exhausted.
func (c *DirEntryChain) NextDirEntry() (DirEntry, error) {
	if c.sector == nil || c.slot >= DirEntriesPerSector {
		c.sector = nil
		sector, err := c.chain.NextSector()
		if err != nil {
			return DirEntry{}, err
		}
		c.sector = sector
		c.slot = 0
	}

	entry, err := decodeDirEntry(c.sector, c.slot)
	if err != nil {
		return DirEntry{}, err
	}
	c.slot++
	return entry, nil
}

// Entries returns the remaining slots as a sequence.
// The sequence stops after yielding the first error.
func (c *DirEntryChain) Entries() iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		for c.HasNextDirEntry() {
			entry, err := c.NextDirEntry()
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// Sectors returns the number of directory sectors read so far
func (c *DirEntryChain) Sectors() int {
	return c.chain.Visited()
}
