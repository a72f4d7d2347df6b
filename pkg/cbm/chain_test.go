package cbm_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/hansbonini/cbmtools/pkg/cbm"
	"github.com/hansbonini/cbmtools/pkg/cbm/cbmtest"
)

func testPayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i*7 + 3)
	}
	return payload
}

func TestFileChain_ReadAll(t *testing.T) {
	testCases := []struct {
		name    string
		size    int
		sectors int
	}{
		{"empty file", 0, 1},
		{"one byte", 1, 1},
		{"exactly one sector", cbm.SectorDataSize, 1},
		{"one sector and a byte", cbm.SectorDataSize + 1, 2},
		{"three sectors", 600, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := cbmtest.New(cbm.D64Geometry35)
			payload := testPayload(tc.size)
			start := b.AddFile("FILE", cbmtest.TypePRG, payload)
			disk := loadBuilder(t, b)

			chain := disk.FileChain(start)
			data, err := chain.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll() failed: %v", err)
			}
			if !bytes.Equal(data, payload) {
				t.Errorf("ReadAll() returned %d bytes, want %d identical bytes", len(data), len(payload))
			}
			if chain.Visited() != tc.sectors {
				t.Errorf("Visited() = %d, want %d", chain.Visited(), tc.sectors)
			}
		})
	}
}

func TestFileChain_DirectoryTrack(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	for i := 0; i < 40; i++ {
		b.AddFile("F", cbmtest.TypeSEQ, []byte{byte(i)})
	}
	disk := loadBuilder(t, b)

	chain := disk.FileChain(cbm.TS(cbm.DirTrack, cbm.HeaderSector))
	count := 0
	for chain.HasNextSector() {
		sector, err := chain.NextSector()
		if err != nil {
			t.Fatalf("NextSector() failed: %v", err)
		}
		if sector.TrackSector().Track != cbm.DirTrack {
			t.Errorf("NextSector() = %s, want a sector on track %d", sector.TrackSector(), cbm.DirTrack)
		}
		count++
	}

	sectors, _ := cbm.D64Geometry35.SectorsPerTrack(cbm.DirTrack)
	if count > sectors {
		t.Errorf("walked %d sectors on track %d, at most %d exist", count, cbm.DirTrack, sectors)
	}
	// header plus five directory sectors
	if count != 6 {
		t.Errorf("walked %d sectors, want 6", count)
	}
}

func TestFileChain_Cycle(t *testing.T) {
	testCases := []struct {
		name  string
		links [][2]cbm.TrackSector
	}{
		{"self loop", [][2]cbm.TrackSector{{cbm.TS(5, 0), cbm.TS(5, 0)}}},
		{"two sectors", [][2]cbm.TrackSector{{cbm.TS(5, 0), cbm.TS(6, 3)}, {cbm.TS(6, 3), cbm.TS(5, 0)}}},
		{"tail loop", [][2]cbm.TrackSector{
			{cbm.TS(5, 0), cbm.TS(5, 1)},
			{cbm.TS(5, 1), cbm.TS(30, 2)},
			{cbm.TS(30, 2), cbm.TS(5, 1)},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := cbmtest.New(cbm.D64Geometry35)
			for _, link := range tc.links {
				b.Link(link[0], link[1])
			}
			disk := loadBuilder(t, b)

			chain := disk.FileChain(tc.links[0][0])
			var err error
			for chain.HasNextSector() {
				if _, err = chain.NextSector(); err != nil {
					break
				}
				if chain.Visited() > disk.Geometry().TotalSectors() {
					t.Fatalf("Visited() = %d exceeds the sector count", chain.Visited())
				}
			}

			if !errors.Is(err, cbm.ErrCorruptChain) {
				t.Fatalf("NextSector() error = %v, want %v", err, cbm.ErrCorruptChain)
			}
			var chainErr *cbm.ChainError
			if !errors.As(err, &chainErr) {
				t.Fatalf("NextSector() error %T should be a *ChainError", err)
			}
			if chainErr.Op != "file" {
				t.Errorf("ChainError.Op = %q, want %q", chainErr.Op, "file")
			}
			if chain.Visited() != len(tc.links) {
				t.Errorf("Visited() = %d, want %d", chain.Visited(), len(tc.links))
			}
		})
	}
}

func TestFileChain_OutOfRange(t *testing.T) {
	for _, bad := range []cbm.TrackSector{cbm.TS(36, 0), cbm.TS(18, 19), cbm.TS(1, 21), cbm.TS(255, 255)} {
		b := cbmtest.New(cbm.D64Geometry35)
		b.Link(cbm.TS(3, 0), bad)
		disk := loadBuilder(t, b)

		chain := disk.FileChain(cbm.TS(3, 0))
		if _, err := chain.NextSector(); err != nil {
			t.Fatalf("NextSector() failed on the valid first sector: %v", err)
		}

		_, err := chain.NextSector()
		if !errors.Is(err, cbm.ErrOutOfRange) {
			t.Errorf("NextSector() error = %v, want %v for link to %s", err, cbm.ErrOutOfRange, bad)
		}
		var chainErr *cbm.ChainError
		if errors.As(err, &chainErr) && chainErr.At != bad {
			t.Errorf("ChainError.At = %s, want %s", chainErr.At, bad)
		}
	}

	disk := loadBuilder(t, cbmtest.New(cbm.D64Geometry35))
	if _, err := disk.FileChain(cbm.TS(40, 0)).NextSector(); !errors.Is(err, cbm.ErrOutOfRange) {
		t.Errorf("NextSector() error = %v, want %v for a start outside the geometry", err, cbm.ErrOutOfRange)
	}
}

func TestFileChain_AbortIsSticky(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	b.Link(cbm.TS(2, 0), cbm.TS(2, 0))
	disk := loadBuilder(t, b)

	chain := disk.FileChain(cbm.TS(2, 0))
	if _, err := chain.NextSector(); err != nil {
		t.Fatalf("NextSector() failed: %v", err)
	}
	_, first := chain.NextSector()
	if first == nil {
		t.Fatal("NextSector() should fail on the revisit")
	}

	for i := 0; i < 3; i++ {
		if chain.HasNextSector() {
			t.Error("HasNextSector() = true after the chain was aborted")
		}
		if _, err := chain.NextSector(); err != first {
			t.Errorf("NextSector() error = %v, want the original %v", err, first)
		}
	}
	if chain.Err() != first {
		t.Errorf("Err() = %v, want %v", chain.Err(), first)
	}
}

func TestFileChain_EndOfChain(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("END", cbmtest.TypePRG, testPayload(300))
	disk := loadBuilder(t, b)

	chain := disk.FileChain(start)
	for chain.HasNextSector() {
		if _, err := chain.NextSector(); err != nil {
			t.Fatalf("NextSector() failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		if chain.HasNextSector() {
			t.Errorf("HasNextSector() = true on call %d after the end", i)
		}
		if _, err := chain.NextSector(); !errors.Is(err, cbm.ErrEndOfChain) {
			t.Errorf("NextSector() error = %v, want %v", err, cbm.ErrEndOfChain)
		}
	}
	if chain.Err() != nil {
		t.Errorf("Err() = %v, want nil after a normal end", chain.Err())
	}
}

func TestFileChain_PeekHasNoSideEffect(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("PEEK", cbmtest.TypePRG, testPayload(10))
	disk := loadBuilder(t, b)

	chain := disk.FileChain(start)
	for i := 0; i < 5; i++ {
		if !chain.HasNextSector() {
			t.Fatal("HasNextSector() = false before reading")
		}
	}
	if chain.Visited() != 0 || chain.Position() != start {
		t.Errorf("HasNextSector() moved the cursor to %s after %d visits", chain.Position(), chain.Visited())
	}
}

func TestFileChain_ZeroStart(t *testing.T) {
	disk := loadBuilder(t, cbmtest.New(cbm.D64Geometry35))

	chain := disk.FileChain(cbm.TS(0, 0))
	if chain.HasNextSector() {
		t.Error("HasNextSector() = true for a chain starting at track 0")
	}
	if _, err := chain.NextSector(); !errors.Is(err, cbm.ErrEndOfChain) {
		t.Errorf("NextSector() error = %v, want %v", err, cbm.ErrEndOfChain)
	}
}

func TestFileChain_Truncated(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("CUT", cbmtest.TypePRG, testPayload(600))
	data := b.Bytes()

	// keep only the first sector of track 1
	disk, err := cbm.Load("cut.d64", data[:cbm.SectorSize])
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	chain := disk.FileChain(start)
	if _, err := chain.NextSector(); err != nil {
		t.Fatalf("NextSector() failed: %v", err)
	}
	_, err = chain.NextSector()
	if !errors.Is(err, cbm.ErrTruncatedImage) {
		t.Errorf("NextSector() error = %v, want %v", err, cbm.ErrTruncatedImage)
	}
	if chain.HasNextSector() {
		t.Error("HasNextSector() = true after a truncated read")
	}
}

func TestFileChain_Idempotent(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("TWICE", cbmtest.TypePRG, testPayload(1000))
	data := b.Bytes()

	walk := func() [][]byte {
		disk, err := cbm.Load("twice.d64", data)
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		var out [][]byte
		for sector, err := range disk.FileChain(start).Sectors() {
			if err != nil {
				t.Fatalf("Sectors() failed: %v", err)
			}
			out = append(out, append([]byte(nil), sector.Raw()...))
		}
		return out
	}

	first, second := walk(), walk()
	if len(first) != len(second) {
		t.Fatalf("walks returned %d and %d sectors", len(first), len(second))
	}
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Errorf("sector %d differs between walks", i)
		}
	}
}

func TestFileChain_SectorsStopsEarly(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	start := b.AddFile("LONG", cbmtest.TypePRG, testPayload(2000))
	disk := loadBuilder(t, b)

	chain := disk.FileChain(start)
	for range chain.Sectors() {
		break
	}
	if chain.Visited() != 1 {
		t.Errorf("Visited() = %d, want 1", chain.Visited())
	}

	// the rest of the chain is still available
	rest, err := chain.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(rest) != 2000-cbm.SectorDataSize {
		t.Errorf("ReadAll() = %d bytes, want %d", len(rest), 2000-cbm.SectorDataSize)
	}
}

func TestFileChain_Concurrent(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	payload := testPayload(5000)
	start := b.AddFile("SHARED", cbmtest.TypePRG, payload)
	disk := loadBuilder(t, b)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := disk.FileChain(start).ReadAll()
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(data, payload) {
				errs <- errors.New("concurrent walk returned different bytes")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestSector_Data(t *testing.T) {
	b := cbmtest.New(cbm.D64Geometry35)
	raw := b.Sector(cbm.TS(4, 0))
	raw[0], raw[1] = 0, 4
	copy(raw[2:], "ABCDEF")
	disk := loadBuilder(t, b)

	sector, err := disk.ReadSector(cbm.TS(4, 0))
	if err != nil {
		t.Fatalf("ReadSector() failed: %v", err)
	}
	if !sector.IsLast() {
		t.Error("IsLast() = false for a sector with link track 0")
	}
	if got := string(sector.Data()); got != "ABC" {
		t.Errorf("Data() = %q, want %q", got, "ABC")
	}
	if _, ok := sector.Next(); ok {
		t.Error("Next() reported a link for the last sector")
	}
	if got := sector.String(); got != "sector[T:4 S:0] last, 3 bytes" {
		t.Errorf("String() = %q", got)
	}
}
