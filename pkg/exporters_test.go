package pkg

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hansbonini/cbmtools/pkg/cbm"
	"github.com/hansbonini/cbmtools/pkg/cbm/cbmtest"
)

func TestDiskFileProcessor_Interface(t *testing.T) {
	var _ DiskReader = NewDiskReader()
	var _ DiskExporter = NewDiskExporter()
	var _ Processor = NewDiskProcessor()
}

func TestDiskFileExporter_WriteListing(t *testing.T) {
	listing := &Listing{
		DiskName: "DISK A SIDE 1",
		DiskID:   "S1 ",
		DOSType:  "2A",
		Entries: []ListingEntry{
			{Name: "GAME", Type: "PRG", Blocks: 2, Closed: true},
			{Name: "NOTES", Type: "SEQ", Blocks: 1, Closed: true, Locked: true},
			{Name: "BROKEN", Type: "USR", Blocks: 1},
		},
		BlocksFree: 660,
	}

	var buf bytes.Buffer
	if err := NewDiskExporter().WriteListing(&buf, listing, false); err != nil {
		t.Fatalf("WriteListing() failed: %v", err)
	}

	want := strings.Join([]string{
		`0 "DISK A SIDE 1   " S1  2A`,
		`2    "GAME"             PRG`,
		`1    "NOTES"            SEQ<`,
		`1    "BROKEN"           *USR`,
		`660 BLOCKS FREE.`,
		``,
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("WriteListing() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiskFileExporter_WriteListingYAML(t *testing.T) {
	listing := &Listing{
		DiskName:   "TEST",
		Entries:    []ListingEntry{{Name: "GAME", Type: "PRG", Blocks: 2, Closed: true}},
		BlocksFree: 662,
	}

	var buf bytes.Buffer
	if err := NewDiskExporter().WriteListing(&buf, listing, true); err != nil {
		t.Fatalf("WriteListing() failed: %v", err)
	}

	var decoded Listing
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() failed: %v", err)
	}
	if decoded.DiskName != "TEST" || decoded.BlocksFree != 662 || len(decoded.Entries) != 1 {
		t.Errorf("decoded listing = %+v", decoded)
	}
	if !strings.Contains(buf.String(), "\n  - dir_track: 0\n") {
		t.Errorf("WriteListing() output is not indented by two spaces:\n%s", buf.String())
	}
}

func TestDiskFileExporter_Extract(t *testing.T) {
	path := writeImage(t, "sample.d64", sampleDisk().Bytes())
	outputDir := filepath.Join(t.TempDir(), "out")

	manifest, err := NewDiskExporter().Extract(path, outputDir, nil)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if len(manifest.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(manifest.Files))
	}
	if len(manifest.Skipped) != 1 || manifest.Skipped[0].Name != "BROKEN" {
		t.Errorf("Skipped = %+v, want BROKEN", manifest.Skipped)
	}

	game := manifest.Files[0]
	if game.Path != "GAME.prg" {
		t.Errorf("Files[0].Path = %q, want %q", game.Path, "GAME.prg")
	}
	if game.LoadAddress != "$0801" {
		t.Errorf("Files[0].LoadAddress = %q, want %q", game.LoadAddress, "$0801")
	}
	if game.Size != 502 || game.Sectors != 2 {
		t.Errorf("Files[0] size/sectors = %d/%d, want 502/2", game.Size, game.Sectors)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "GAME.prg"))
	if err != nil {
		t.Fatalf("Failed to read extracted file: %v", err)
	}
	want := append([]byte{0x01, 0x08}, payload(500)...)
	if !bytes.Equal(data, want) {
		t.Errorf("extracted GAME.prg differs from the stored payload")
	}

	notes := manifest.Files[1]
	if notes.Path != "NOTES.seq" || notes.LoadAddress != "" {
		t.Errorf("Files[1] = %+v, want NOTES.seq without load address", notes)
	}

	loaded, err := LoadManifest(filepath.Join(outputDir, ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest() failed: %v", err)
	}
	if loaded.DiskName != "DISK A SIDE 1" || len(loaded.Files) != 2 {
		t.Errorf("LoadManifest() = %+v", loaded)
	}
}

func TestDiskFileExporter_ExtractOptions(t *testing.T) {
	path := writeImage(t, "sample.d64", sampleDisk().Bytes())
	outputDir := t.TempDir()

	opts := &ExtractOptions{IncludeUnclosed: true, WriteManifest: false}
	manifest, err := NewDiskExporter().Extract(path, outputDir, opts)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if len(manifest.Files) != 3 {
		t.Errorf("len(Files) = %d, want 3", len(manifest.Files))
	}
	if _, err := os.Stat(filepath.Join(outputDir, "BROKEN.usr")); err != nil {
		t.Errorf("BROKEN.usr was not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, ManifestFileName)); !os.IsNotExist(err) {
		t.Errorf("manifest should not be written, Stat() error = %v", err)
	}
}

func TestDiskFileExporter_ExtractSkipsCorruptFile(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	b := cbmtest.New(cbm.D64Geometry35)
	loop := b.AddFile("LOOP", cbmtest.TypePRG, payload(600))
	b.Link(cbm.TS(1, 1), loop)
	b.AddFile("GOOD", cbmtest.TypeSEQ, payload(40))
	b.AddFile("GOOD", cbmtest.TypeSEQ, payload(20))
	path := writeImage(t, "mixed.d64", b.Bytes())

	manifest, err := NewDiskExporter().Extract(path, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if len(manifest.Skipped) != 1 || manifest.Skipped[0].Name != "LOOP" {
		t.Errorf("Skipped = %+v, want LOOP", manifest.Skipped)
	}
	if len(manifest.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(manifest.Files))
	}
	if manifest.Files[0].Path != "GOOD.seq" || manifest.Files[1].Path != "GOOD_2.seq" {
		t.Errorf("paths = %q, %q, want GOOD.seq, GOOD_2.seq", manifest.Files[0].Path, manifest.Files[1].Path)
	}
	if !strings.Contains(buf.String(), "[WARN] Skipping LOOP") {
		t.Errorf("expected a skip warning, got:\n%s", buf.String())
	}
}

func TestDiskFileExporter_ExtractBlockMismatch(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("DATA", cbmtest.TypePRG, payload(10))
	b.AddEntry("ALIAS", cbmtest.TypePRG, start, 7)
	path := writeImage(t, "alias.d64", b.Bytes())

	if _, err := NewDiskExporter().Extract(path, t.TempDir(), nil); err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "ALIAS: directory says 7 blocks, chain has 1") {
		t.Errorf("expected a block count warning, got:\n%s", buf.String())
	}
}

func TestDiskFileExporter_Convert(t *testing.T) {
	b := sampleDisk()
	source := b.Bytes()
	codes := make([]byte, cbm.D64Geometry35.TotalSectors())
	path := writeImage(t, "errors.d64", append(append([]byte(nil), source...), codes...))
	dir := t.TempDir()
	exporter := NewDiskExporter()

	t.Run("d64", func(t *testing.T) {
		out := filepath.Join(dir, "plain.d64")
		if err := exporter.Convert(path, out); err != nil {
			t.Fatalf("Convert() failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("Failed to read output: %v", err)
		}
		if !bytes.Equal(data, source) {
			t.Errorf("Convert() output differs from the sector dump (%d bytes)", len(data))
		}
	})

	t.Run("nibble capture", func(t *testing.T) {
		out := filepath.Join(dir, "capture.NIB")
		if err := exporter.Convert(path, out); err != nil {
			t.Fatalf("Convert() failed: %v", err)
		}

		disk, err := cbm.Open(out)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		if disk.Format() != cbm.FormatNibbleCapture {
			t.Errorf("Format() = %s, want %s", disk.Format(), cbm.FormatNibbleCapture)
		}
		if !bytes.Equal(cbm.CanonicalBytes(disk), source) {
			t.Error("NIBCAP64 round trip changed the sector data")
		}
	})

	t.Run("same file", func(t *testing.T) {
		if err := exporter.Convert(path, path); err == nil {
			t.Error("Convert() onto its own input should fail")
		}
	})

	t.Run("unrecognized input", func(t *testing.T) {
		bad := writeImage(t, "bad.img", make([]byte, 100))
		err := exporter.Convert(bad, filepath.Join(dir, "never.d64"))
		if !errors.Is(err, cbm.ErrUnrecognizedFormat) {
			t.Errorf("Convert() error = %v, want %v", err, cbm.ErrUnrecognizedFormat)
		}
	})
}

func TestLoadManifest_Errors(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadManifest() of a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), ManifestFileName)
	if err := os.WriteFile(path, []byte("files: [unterminated"), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest() of malformed YAML should fail")
	}
}
