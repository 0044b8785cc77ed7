package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the gateways, the pipeline and the HTTP layer.
var (
	ErrAuthentication    = errors.New("authentication failed")
	ErrRemoteAPI         = errors.New("remote api error")
	ErrExportTimeout     = errors.New("export timed out")
	ErrParse             = errors.New("parse failure")
	ErrDivisionUndefined = errors.New("division undefined")
	ErrMissingHRMatch    = errors.New("no hr match")
	ErrInsufficientData  = errors.New("insufficient data")
)

// RemoteError carries the message an upstream API reported.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap makes errors.Is(err, ErrRemoteAPI) hold.
func (e *RemoteError) Unwrap() error { return ErrRemoteAPI }
