// Package blob is the only entry point to the photo storage backends. Callers
// depend on Store and open a backend through Open or the typed constructors.
package blob

import "gasreport/internal/blob/core"

type (
	// Driver identifies a backend.
	Driver = core.Driver
	// PutOptions carries content type and user metadata for Put.
	PutOptions = core.PutOptions
	// Info describes a stored blob.
	Info = core.Info
	// Store is the backend contract.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrExists   = core.ErrExists
	ErrNotFound = core.ErrNotFound
)
