package telemetry

import "errors"

var (
	// ErrExporterFailed indicates the exporter could not be constructed.
	ErrExporterFailed = errors.New("exporter failed")

	// ErrShutdownFailed indicates provider shutdown failed.
	ErrShutdownFailed = errors.New("shutdown failed")
)
