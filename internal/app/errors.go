package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrQueueFull     = errors.New("refresh queue full")
	ErrJobNotFound   = errors.New("refresh job not found")
	ErrNoSalesSource = errors.New("no sales source configured")
	ErrInvalidRange  = errors.New("invalid date range")
)
