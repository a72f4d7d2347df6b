// Package pkg provides the workflows built on top of the disk engine:
// directory listings, file extraction with YAML manifests, chain dumps,
// image information and container conversion.
package pkg

import (
	"io"

	"github.com/hansbonini/cbmtools/pkg/cbm"
)

// ManifestFileName is the name of the manifest written next to extracted files
const ManifestFileName = "manifest.yaml"

// ListOptions configures directory listings
type ListOptions struct {
	IncludeEmpty bool // include empty and scratched slots
}

// DefaultListOptions returns the options used by the dir command
func DefaultListOptions() *ListOptions {
	return &ListOptions{IncludeEmpty: false}
}

// ExtractOptions configures file extraction
type ExtractOptions struct {
	IncludeUnclosed bool // extract files whose closed flag is not set
	WriteManifest   bool // write manifest.yaml into the output directory
}

// DefaultExtractOptions returns the options used by the extract command
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		IncludeUnclosed: false,
		WriteManifest:   true,
	}
}

// Listing is a directory listing of one disk image
type Listing struct {
	Image      string         `yaml:"image"`
	Format     string         `yaml:"format"`
	DiskName   string         `yaml:"disk_name"`
	DiskID     string         `yaml:"disk_id"`
	DOSType    string         `yaml:"dos_type"`
	Entries    []ListingEntry `yaml:"entries"`
	BlocksFree int            `yaml:"blocks_free"`
}

// ListingEntry is one directory slot in a listing
type ListingEntry struct {
	DirTrack  uint8  `yaml:"dir_track"`
	DirSector uint8  `yaml:"dir_sector"`
	Slot      int    `yaml:"slot"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Blocks    uint16 `yaml:"blocks"`
	Track     uint8  `yaml:"track"`
	Sector    uint8  `yaml:"sector"`
	Locked    bool   `yaml:"locked"`
	Closed    bool   `yaml:"closed"`
}

// Manifest records what an extraction wrote
type Manifest struct {
	Image    string         `yaml:"image"`
	Format   string         `yaml:"format"`
	DiskName string         `yaml:"disk_name"`
	DiskID   string         `yaml:"disk_id"`
	Files    []ManifestFile `yaml:"files"`
	Skipped  []SkippedFile  `yaml:"skipped,omitempty"`
}

// ManifestFile describes one extracted file
type ManifestFile struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Path        string `yaml:"path"` // relative to the output directory
	Track       uint8  `yaml:"track"`
	Sector      uint8  `yaml:"sector"`
	Blocks      uint16 `yaml:"blocks"`
	Sectors     int    `yaml:"sectors"`
	Size        int    `yaml:"size"`
	LoadAddress string `yaml:"load_address,omitempty"` // PRG files only, e.g. "$0801"
}

// SkippedFile is a directory entry that could not be extracted
type SkippedFile struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

// ChainStep is one sector of a dumped chain
type ChainStep struct {
	Index      int    `yaml:"index"`
	Track      uint8  `yaml:"track"`
	Sector     uint8  `yaml:"sector"`
	NextTrack  uint8  `yaml:"next_track"`
	NextSector uint8  `yaml:"next_sector"`
	Bytes      int    `yaml:"bytes"`
	ErrorCode  string `yaml:"error_code,omitempty"`
}

// DiskInfo summarizes a disk image
type DiskInfo struct {
	Image          string `yaml:"image"`
	Format         string `yaml:"format"`
	Geometry       string `yaml:"geometry"`
	TotalSectors   int    `yaml:"total_sectors"`
	DiskName       string `yaml:"disk_name"`
	DiskID         string `yaml:"disk_id"`
	DOSType        string `yaml:"dos_type"`
	DOSVersion     string `yaml:"dos_version"`
	WriteProtected bool   `yaml:"write_protected"`
	DirSectors     int    `yaml:"dir_sectors"`
	Files          int    `yaml:"files"`
	BlocksUsed     int    `yaml:"blocks_used"`
	BlocksFree     int    `yaml:"blocks_free"`
	SectorErrors   int    `yaml:"sector_errors"`
}

// DiskReader interface defines the read-only queries on a disk image
type DiskReader interface {
	List(inputFile string, opts *ListOptions) (*Listing, error)
	Info(inputFile string) (*DiskInfo, error)
	DumpChain(inputFile string, start cbm.TrackSector) ([]ChainStep, error)
}

// DiskExporter interface defines methods that write data out of a disk image
type DiskExporter interface {
	WriteListing(w io.Writer, listing *Listing, asYAML bool) error
	WriteYAML(w io.Writer, v interface{}) error
	Extract(inputFile, outputDir string, opts *ExtractOptions) (*Manifest, error)
	Convert(inputFile, outputFile string) error
}

// Processor combines reader and exporter functionality
type Processor interface {
	DiskReader
	DiskExporter
}
