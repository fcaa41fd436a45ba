//go:build !linux && !windows && !(darwin && cgo) && !((freebsd || netbsd || openbsd) && cgo)

package proc

import "github.com/pranshuparmar/listeners/pkg/model"

// ListListeners reports ErrUnsupportedPlatform.
func ListListeners() ([]model.Listener, error) {
	return nil, model.ErrUnsupportedPlatform
}

// FindProcess reports ErrUnsupportedPlatform.
func FindProcess(uint16, model.Protocol) (model.Process, error) {
	return model.Process{}, model.ErrUnsupportedPlatform
}
