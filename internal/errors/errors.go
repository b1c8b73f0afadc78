package gerr

import "errors"

var (
	// ErrStoreUnavailable marks a collaborator store that could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSectionPanic is returned by report assemblers when a section panicked.
	ErrSectionPanic = errors.New("report section panicked")
)
