package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned on operating systems without an adapter.
	ErrUnsupportedPlatform = errors.New("listener enumeration is not supported on this platform")
	// ErrNotFound is returned when no process owns the requested port.
	ErrNotFound = errors.New("no process found listening on the requested port")
	// ErrSourceUnavailable matches any SourceError.
	ErrSourceUnavailable = errors.New("socket source unavailable")
)

// SourceError reports that an OS data source required for the snapshot
// could not be read. Sources are named the way the OS names them:
// "/proc/net/tcp", "GetExtendedTcpTable", "proc_listpids", "net.inet.tcp.pcblist".
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceError wraps err as a SourceError for source. A nil err yields nil.
func NewSourceError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: source, Err: err}
}
