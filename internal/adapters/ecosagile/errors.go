package ecosagile

import "errors"

// Sentinel errors for the HR gateway.
var (
	ErrIncompleteCredentials = errors.New("ecosagile credentials incomplete")
	ErrNoToken               = errors.New("ecosagile: token not found in response")
)
