package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned when a Store is created with or asked to
	// use a save format it has no codec for.
	ErrUnknownFormat = errors.New("unknown save format")

	// ErrMissingFile is returned by Load when the data file does not exist.
	ErrMissingFile = errors.New("data file missing")
)

// LoadError reports a failure to read or decode the data file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a failure to encode or write the data file.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SaveError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err is a load-time condition the lifecycle
// controller may self-heal by resetting to an empty store: a missing file, an
// unknown format or a corrupt/undecodable file.
func IsRecoverable(err error) bool {
	if errors.Is(err, ErrMissingFile) || errors.Is(err, ErrUnknownFormat) {
		return true
	}
	var le *LoadError
	return errors.As(err, &le)
}
