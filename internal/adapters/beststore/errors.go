package beststore

import "errors"

// Sentinel errors for the sales gateway.
var (
	ErrNoSession     = errors.New("beststore: login returned no session id")
	ErrNoTaskID      = errors.New("beststore: export request returned no task id")
	ErrNoDownloadURL = errors.New("beststore: task ready without download url")
	ErrMissingColumn = errors.New("beststore: missing column")
)
