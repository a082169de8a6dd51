package geodata

import (
	"errors"
	"fmt"
)

// ErrLoad matches every *LoadError via errors.Is.
var ErrLoad = errors.New("geodata: load failed")

// Reason classifies why a load failed.
type Reason string

const (
	ReasonUnreadable  Reason = "unreadable"
	ReasonMalformed   Reason = "malformed"
	ReasonUnsupported Reason = "unsupported"
	ReasonEmpty       Reason = "empty"
	ReasonNoColumns   Reason = "no-columns"
)

// LoadError is returned for any source that could not be turned into a
// FeatureCollection.
type LoadError struct {
	Source string
	Reason Reason
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func loadErr(source string, reason Reason, err error) *LoadError {
	return &LoadError{Source: source, Reason: reason, Err: err}
}
