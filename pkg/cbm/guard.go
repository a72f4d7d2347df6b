package cbm

import "fmt"

// chainGuard validates every coordinate a chain walker visits.
// It rejects links outside the geometry, revisits of a sector, chains longer
// than the disk and, when confineTrack is set, links leaving that track.
type chainGuard struct {
	op           string
	geometry     *Geometry
	visited      []bool
	count        int
	limit        int
	confineTrack uint8 // 0 = any track
}

func newChainGuard(geometry *Geometry, op string, confineTrack uint8) *chainGuard {
	total := geometry.TotalSectors()
	return &chainGuard{
		op:           op,
		geometry:     geometry,
		visited:      make([]bool, total),
		limit:        total,
		confineTrack: confineTrack,
	}
}

// check records a visit of ts or returns a *ChainError describing why it is invalid
func (g *chainGuard) check(ts TrackSector) error {
	index, err := g.geometry.SectorIndex(ts)
	if err != nil {
		return &ChainError{Op: g.op, At: ts, Err: ErrOutOfRange}
	}
	if g.confineTrack != 0 && ts.Track != g.confineTrack {
		return &ChainError{Op: g.op, At: ts, Err: fmt.Errorf("%w: left track %d", ErrCorruptChain, g.confineTrack)}
	}
	if g.visited[index] {
		return &ChainError{Op: g.op, At: ts, Err: fmt.Errorf("%w: sector visited twice", ErrCorruptChain)}
	}
	if g.count >= g.limit {
		return &ChainError{Op: g.op, At: ts, Err: fmt.Errorf("%w: longer than %d sectors", ErrCorruptChain, g.limit)}
	}

	g.visited[index] = true
	g.count++
	return nil
}
