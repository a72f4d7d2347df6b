package pkg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hansbonini/cbmtools/pkg/cbm"
	"github.com/hansbonini/cbmtools/pkg/common"
)

// NibbleCaptureExtension selects the NIBCAP64 container as conversion target
const NibbleCaptureExtension = ".nib"

// DiskFileExporter implements the DiskExporter interface
type DiskFileExporter struct{}

// NewDiskExporter creates a new disk exporter instance
func NewDiskExporter() *DiskFileExporter {
	return &DiskFileExporter{}
}

// WriteYAML encodes v as YAML with two space indentation
func (e *DiskFileExporter) WriteYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteListing prints a listing either as YAML or in the style of the
// C64 LOAD"$",8 listing:
//
//	0 "DISK A SIDE 1   " S1  2A
//	3    "GAME"             PRG
//	661 BLOCKS FREE.
func (e *DiskFileExporter) WriteListing(w io.Writer, listing *Listing, asYAML bool) error {
	if asYAML {
		if err := e.WriteYAML(w, listing); err != nil {
			return common.FormatError(common.ErrFailedToWriteListing, err)
		}
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "0 \"%-16s\" %s %s\n", listing.DiskName, listing.DiskID, listing.DOSType)
	for _, entry := range listing.Entries {
		fmt.Fprintf(&sb, "%-5d%-18s %s\n", entry.Blocks, `"`+entry.Name+`"`, listingType(entry))
	}
	fmt.Fprintf(&sb, "%d BLOCKS FREE.\n", listing.BlocksFree)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return common.FormatError(common.ErrFailedToWriteListing, err)
	}
	return nil
}

// listingType renders the type column: '*' marks unclosed files, '<' locked ones
func listingType(entry ListingEntry) string {
	s := entry.Type
	if !entry.Closed {
		s = "*" + s
	}
	if entry.Locked {
		s += "<"
	}
	return s
}

// Extract writes every used directory entry's data to outputDir.
// Parameters:
//   - inputFile: disk image to read
//   - outputDir: directory receiving the files and the manifest
//   - opts: extraction options, nil for DefaultExtractOptions()
//
// Files whose sector chain is unreadable are skipped and listed in the manifest.
// Errors reading the directory itself or writing output abort the extraction.
func (e *DiskFileExporter) Extract(inputFile, outputDir string, opts *ExtractOptions) (*Manifest, error) {
	if opts == nil {
		opts = DefaultExtractOptions()
	}

	disk, dir, err := openDisk(inputFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, common.FormatError(common.ErrFailedToCreateOutputDir, err)
	}

	manifest := &Manifest{
		Image:    filepath.Base(inputFile),
		Format:   disk.Format().String(),
		DiskName: dir.DiskName(),
		DiskID:   dir.DiskID(),
		Files:    []ManifestFile{},
	}
	taken := map[string]bool{ManifestFileName: true}

	for entry, err := range dir.DirEntryChain().Entries() {
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToReadDirEntry, err)
		}
		if entry.IsEmpty() {
			continue
		}
		if !entry.IsClosed() && !opts.IncludeUnclosed {
			common.LogDebug(common.DebugSkippedEntry, entry.Sector, entry.Slot, entry)
			manifest.Skipped = append(manifest.Skipped, SkippedFile{Name: entry.Name, Reason: "file not closed"})
			continue
		}

		chain := disk.FileChain(entry.Start)
		data, err := chain.ReadAll()
		if err != nil {
			common.LogWarn(common.WarnFileUnreadable, entry.Name, err)
			manifest.Skipped = append(manifest.Skipped, SkippedFile{Name: entry.Name, Reason: err.Error()})
			continue
		}
		if int(entry.Blocks) != chain.Visited() {
			common.LogWarn(common.WarnBlockCountMismatch, entry.Name, entry.Blocks, chain.Visited())
		}

		file := ManifestFile{
			Name:    entry.Name,
			Type:    entry.Type().String(),
			Path:    common.UniqueFileName(common.CleanFileName(entry.Name), fileExtension(entry.Type()), taken),
			Track:   entry.Start.Track,
			Sector:  entry.Start.Sector,
			Blocks:  entry.Blocks,
			Sectors: chain.Visited(),
			Size:    len(data),
		}
		if entry.Type() == cbm.FilePRG && len(data) >= 2 {
			if addr, err := common.ReadUint16LE(bytes.NewReader(data)); err == nil {
				file.LoadAddress = fmt.Sprintf("$%04X", addr)
				common.LogDebug(common.DebugLoadAddress, entry.Name, addr)
			}
		}

		target := filepath.Join(outputDir, file.Path)
		if err := common.WriteFile(target, data); err != nil {
			return nil, err
		}
		common.LogInfo(common.InfoFileExtracted, entry.Name, file.Type, file.Size, target)
		manifest.Files = append(manifest.Files, file)
	}

	if opts.WriteManifest {
		if err := e.WriteManifest(manifest, outputDir); err != nil {
			return nil, err
		}
	}

	common.LogInfo(common.InfoFilesExtracted, len(manifest.Files), outputDir)
	return manifest, nil
}

// fileExtension maps a file type onto a lower case host extension
func fileExtension(t cbm.FileType) string {
	switch t {
	case cbm.FileScratched, cbm.FileUnknown:
		return ".bin"
	default:
		return "." + strings.ToLower(t.String())
	}
}

// WriteManifest stores manifest as manifest.yaml in outputDir
func (e *DiskFileExporter) WriteManifest(manifest *Manifest, outputDir string) error {
	path := filepath.Join(outputDir, ManifestFileName)
	file, err := os.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}
	defer file.Close()

	if err := e.WriteYAML(file, manifest); err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}

	common.LogInfo(common.InfoManifestWritten, path)
	return nil
}

// LoadManifest reads a manifest written by Extract
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadManifest, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, common.FormatError(common.ErrFailedToParseYAML, err)
	}
	return &manifest, nil
}

// Convert writes the canonical sector dump of inputFile to outputFile.
// A ".nib" output file receives a NIBCAP64 capture instead. The input is never modified.
func (e *DiskFileExporter) Convert(inputFile, outputFile string) error {
	if samePath(inputFile, outputFile) {
		return common.FormatErrorString(common.ErrFailedToConvertImage, "output %s is the input image", outputFile)
	}

	disk, err := cbm.Open(inputFile)
	if err != nil {
		return common.FormatError(common.ErrFailedToOpenDisk, err)
	}

	data := cbm.CanonicalBytes(disk)
	if strings.EqualFold(filepath.Ext(outputFile), NibbleCaptureExtension) {
		data = cbm.EncodeNibbleCapture(data, disk.Geometry().Tracks())
	}

	if err := common.WriteFile(outputFile, data); err != nil {
		return common.FormatError(common.ErrFailedToConvertImage, err)
	}

	common.LogInfo(common.InfoImageConverted, inputFile, disk.Format(), outputFile, len(data))
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// DiskFileProcessor combines reader and exporter functionality
type DiskFileProcessor struct {
	*DiskFileReader
	*DiskFileExporter
}

// NewDiskProcessor creates a new disk processor with both reader and exporter
func NewDiskProcessor() *DiskFileProcessor {
	return &DiskFileProcessor{
		DiskFileReader:   NewDiskReader(),
		DiskFileExporter: NewDiskExporter(),
	}
}
