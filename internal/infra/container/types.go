// Package container defines the persistence contract for case files: a
// container is a named-slot byte store addressed by a filesystem path, with
// interchangeable sqlite, postgres and memory backends.
package container

import (
	"context"
	"errors"
)

// Driver names a container backend.
type Driver string

// Supported container drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

// Well-known slot names and content types.
const (
	// ConfigurationSlot holds the serialized case document.
	ConfigurationSlot = "configuration"
	// ContentTypeXML labels slots holding the case document.
	ContentTypeXML = "application/xml; charset=utf-8"
)

// ErrSlotNotFound reports a read of a slot the container does not hold.
var ErrSlotNotFound = errors.New("container slot not found")

// ErrContentType reports a slot whose declared content type conflicts with
// the requested one. Slots never change content type once written.
var ErrContentType = errors.New("container slot content type mismatch")

// Slot is one named payload within a container.
type Slot struct {
	Name        string
	ContentType string
	Payload     []byte
}

// Container is a named-slot byte store behind one case path.
type Container interface {
	// ReadSlot returns the slot by name, or ErrSlotNotFound.
	ReadSlot(ctx context.Context, name string) (Slot, error)
	// WriteSlot creates or overwrites a slot. Overwriting with a different
	// content type fails with ErrContentType.
	WriteSlot(ctx context.Context, slot Slot) error
	// Driver identifies the backend.
	Driver() Driver
	// Path is the case path the container was opened under.
	Path() string
	// Close releases backend resources.
	Close() error
}
