package hrdir

import "errors"

// Sentinel errors for the HR directory loader.
var (
	ErrMissingHeader  = errors.New("hr file: missing header row")
	ErrMissingNameCol = errors.New("hr file: no name column")
)
