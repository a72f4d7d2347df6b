package cbm

import "iter"

// FileChain is a forward-only cursor over a chain of linked sectors.
// Restart a traversal by asking the disk for a new chain.
type FileChain struct {
	img     *image
	guard   *chainGuard
	current TrackSector
	done    bool
	err     error // sticky failure, set when the chain was aborted
}

func newFileChain(img *image, start TrackSector, guard *chainGuard) *FileChain {
	return &FileChain{
		img:     img,
		guard:   guard,
		current: start,
		done:    start.Track == 0,
	}
}

// HasNextSector reports whether NextSector will return a sector.
// It has no side effects.
func (c *FileChain) HasNextSector() bool {
	return !c.done && c.err == nil
}

// NextSector reads the sector at the current position and advances along its link.
// It returns ErrEndOfChain once the chain is exhausted. A chain that failed
// validation is aborted and keeps returning the same error.
func (c *FileChain) NextSector() (*Sector, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.done {
		return nil, ErrEndOfChain
	}

	if err := c.guard.check(c.current); err != nil {
		c.err = err
		return nil, err
	}

	sector, err := c.img.ReadSector(c.current)
	if err != nil {
		c.err = &ChainError{Op: c.guard.op, At: c.current, Err: err}
		return nil, c.err
	}

	if next, ok := sector.Next(); ok {
		c.current = next
	} else {
		c.done = true
	}
	return sector, nil
}

// Position returns the coordinate NextSector will read
func (c *FileChain) Position() TrackSector {
	return c.current
}

// Visited returns the number of sectors read so far
func (c *FileChain) Visited() int {
	return c.guard.count
}

// Err returns the error that aborted the chain, if any
func (c *FileChain) Err() error {
	return c.err
}

// Sectors returns the remaining sectors as a sequence.
// The sequence stops after yielding the first error.
func (c *FileChain) Sectors() iter.Seq2[*Sector, error] {
	return func(yield func(*Sector, error) bool) {
		for c.HasNextSector() {
			sector, err := c.NextSector()
			if !yield(sector, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll concatenates the payload of every remaining sector
func (c *FileChain) ReadAll() ([]byte, error) {
	var out []byte
	for sector, err := range c.Sectors() {
		if err != nil {
			return out, err
		}
		out = append(out, sector.Data()...)
	}
	return out, nil
}
