package services

import "errors"

// Dataset errors
var (
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrNoData           = errors.New("no rows match the requested range")
	ErrNoDatasetFile    = errors.New("no dataset file found")
)

// Operation errors
var (
	ErrOperationNotFound   = errors.New("operation not found")
	ErrOperationRunning    = errors.New("a refresh operation is already running")
	ErrOperationNotRunning = errors.New("operation not running")
	ErrInvalidStep         = errors.New("invalid operation step")
)

// General errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
