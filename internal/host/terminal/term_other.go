//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package terminal

import (
	"errors"
	"runtime"
)

func enableRawMode(int) (func() error, error) {
	return nil, errors.New("raw terminal mode is not supported on " + runtime.GOOS)
}
