package pkg

import (
	"fmt"
	"path/filepath"

	"github.com/hansbonini/cbmtools/pkg/cbm"
	"github.com/hansbonini/cbmtools/pkg/common"
)

// DiskFileReader implements the DiskReader interface
type DiskFileReader struct{}

// NewDiskReader creates a new disk reader instance
func NewDiskReader() *DiskFileReader {
	return &DiskFileReader{}
}

// openDisk loads the image at inputFile and parses its header
func openDisk(inputFile string) (cbm.Disk, *cbm.Directory, error) {
	disk, err := cbm.Open(inputFile)
	if err != nil {
		return nil, nil, common.FormatError(common.ErrFailedToOpenDisk, err)
	}

	dir, err := disk.Directory()
	if err != nil {
		return nil, nil, common.FormatError(common.ErrFailedToReadDirectory, err)
	}
	return disk, dir, nil
}

// List reads every directory slot of the image. Empty and scratched slots are
// left out unless opts.IncludeEmpty is set.
func (r *DiskFileReader) List(inputFile string, opts *ListOptions) (*Listing, error) {
	if opts == nil {
		opts = DefaultListOptions()
	}

	disk, dir, err := openDisk(inputFile)
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		Image:      filepath.Base(inputFile),
		Format:     disk.Format().String(),
		DiskName:   dir.DiskName(),
		DiskID:     dir.DiskID(),
		DOSType:    dir.DOSType(),
		Entries:    []ListingEntry{},
		BlocksFree: dir.FreeBlocks(),
	}

	chain := dir.DirEntryChain()
	slots := 0
	for entry, err := range chain.Entries() {
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToReadDirEntry, err)
		}
		slots++

		if entry.IsEmpty() && !opts.IncludeEmpty {
			common.LogDebug(common.DebugSkippedEntry, entry.Sector, entry.Slot, entry)
			continue
		}
		common.LogDebug(common.DebugDirEntry, entry.Sector, entry.Slot, entry)
		listing.Entries = append(listing.Entries, newListingEntry(entry))
	}

	common.LogInfo(common.InfoDirectoryRead, listing.DiskName, slots, chain.Sectors(), len(listing.Entries))
	return listing, nil
}

func newListingEntry(entry cbm.DirEntry) ListingEntry {
	return ListingEntry{
		DirTrack:  entry.Sector.Track,
		DirSector: entry.Sector.Sector,
		Slot:      entry.Slot,
		Name:      entry.Name,
		Type:      entry.Type().String(),
		Blocks:    entry.Blocks,
		Track:     entry.Start.Track,
		Sector:    entry.Start.Sector,
		Locked:    entry.IsLocked(),
		Closed:    entry.IsClosed(),
	}
}

// Info summarizes the header, directory and error info of an image
func (r *DiskFileReader) Info(inputFile string) (*DiskInfo, error) {
	disk, dir, err := openDisk(inputFile)
	if err != nil {
		return nil, err
	}

	info := &DiskInfo{
		Image:          filepath.Base(inputFile),
		Format:         disk.Format().String(),
		Geometry:       disk.Geometry().String(),
		TotalSectors:   disk.Geometry().TotalSectors(),
		DiskName:       dir.DiskName(),
		DiskID:         dir.DiskID(),
		DOSType:        dir.DOSType(),
		DOSVersion:     fmt.Sprintf("$%02X", dir.DOSVersion()),
		WriteProtected: dir.SoftWriteProtected(),
		BlocksFree:     dir.FreeBlocks(),
	}
	if info.WriteProtected {
		common.LogWarn(common.WarnSoftWriteProtected, info.DiskName, dir.DOSVersion())
	}

	chain := dir.DirEntryChain()
	for entry, err := range chain.Entries() {
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToReadDirEntry, err)
		}
		if entry.IsEmpty() {
			continue
		}
		info.Files++
		info.BlocksUsed += int(entry.Blocks)
	}
	info.DirSectors = chain.Sectors()
	info.SectorErrors = countSectorErrors(disk)

	return info, nil
}

// countSectorErrors counts sectors whose recorded drive status is not OK.
// Codes 0x00 and 0x01 both mean no error.
func countSectorErrors(disk cbm.Disk) int {
	geometry := disk.Geometry()
	bad := 0
	for track := 1; track <= geometry.Tracks(); track++ {
		count, _ := geometry.SectorsPerTrack(track)
		for sector := 0; sector < count; sector++ {
			code, ok := disk.SectorErrorCode(cbm.TS(uint8(track), uint8(sector)))
			if ok && code > 0x01 {
				bad++
			}
		}
	}
	return bad
}

// DumpChain walks the sector chain starting at start and reports every step.
// When the chain is corrupt the steps read so far are returned with the error.
func (r *DiskFileReader) DumpChain(inputFile string, start cbm.TrackSector) ([]ChainStep, error) {
	disk, err := cbm.Open(inputFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenDisk, err)
	}

	var steps []ChainStep
	total := 0
	for sector, err := range disk.FileChain(start).Sectors() {
		if err != nil {
			return steps, common.FormatError(common.ErrFailedToWalkChain, err)
		}

		raw := sector.Raw()
		ts := sector.TrackSector()
		step := ChainStep{
			Index:      len(steps),
			Track:      ts.Track,
			Sector:     ts.Sector,
			NextTrack:  raw[0],
			NextSector: raw[1],
			Bytes:      len(sector.Data()),
		}
		if code, ok := disk.SectorErrorCode(ts); ok {
			step.ErrorCode = fmt.Sprintf("$%02X", code)
		}

		common.LogDebug(common.DebugChainStep, step.Index, sector)
		steps = append(steps, step)
		total += step.Bytes
	}

	common.LogInfo(common.InfoChainWalked, start, len(steps), total)
	return steps, nil
}
