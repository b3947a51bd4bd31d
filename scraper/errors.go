package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout signals that a bounded UI wait expired.
	ErrTimeout = errors.New("timed out waiting for element")

	// ErrFilterNotEmpty is returned by Reveal when columns are still visible.
	ErrFilterNotEmpty = errors.New("filter: reveal requires an empty column view")

	// ErrEmptyReveal is returned by Reveal when no descriptor is given.
	ErrEmptyReveal = errors.New("filter: nothing to reveal")

	// ErrFilterUnknown is returned after a failed panel interaction, until
	// the page is reloaded and the state is Reset.
	ErrFilterUnknown = errors.New("filter: column view is in an unknown state")

	// ErrInvalidPageRange is returned for a start below 1 or a stop not
	// after the start.
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrNoDescriptors is returned when a session is asked to extract nothing.
	ErrNoDescriptors = errors.New("no descriptors requested")
)

// AlignmentError reports a column whose value count differs from the
// page's identity count. It is fatal for the run.
type AlignmentError struct {
	Page       int
	Descriptor string
	Want       int
	Got        int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment: page %d column %q has %d values for %d identities",
		e.Page, e.Descriptor, e.Got, e.Want)
}
