package scraper

import "fmt"

// PageRange is the half-open interval [Start, Stop) of page indices.
// Stop == 0 means the range is unbounded.
type PageRange struct {
	Start int
	Stop  int
}

// Bounded reports whether the range has an upper limit.
func (r PageRange) Bounded() bool { return r.Stop > 0 }

// Contains reports whether page lies in the range.
func (r PageRange) Contains(page int) bool {
	return page >= r.Start && (!r.Bounded() || page < r.Stop)
}

// Validate rejects a start below 1 and a bounded stop not after the start.
func (r PageRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start %d is below 1", ErrInvalidPageRange, r.Start)
	}
	if r.Stop < 0 || (r.Bounded() && r.Stop <= r.Start) {
		return fmt.Errorf("%w: stop %d is not after start %d", ErrInvalidPageRange, r.Stop, r.Start)
	}
	return nil
}

func (r PageRange) String() string {
	if !r.Bounded() {
		return fmt.Sprintf("[%d, ...)", r.Start)
	}
	return fmt.Sprintf("[%d, %d)", r.Start, r.Stop)
}
