//go:build linux || darwin || freebsd || netbsd || openbsd

package terminal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// enableRawMode disables line buffering and echo of the terminal and makes
// reads return immediately. The returned function restores the previous
// terminal state.
func enableRawMode(fd int) (func() error, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("getting terminal attributes: %w", err)
	}

	restore := *termios
	state := *termios

	state.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL
	state.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	state.Cflag &^= unix.CSIZE | unix.PARENB
	state.Cflag |= unix.CS8

	state.Cc[unix.VMIN] = 0
	state.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &state); err != nil {
		return nil, fmt.Errorf("setting terminal attributes: %w", err)
	}

	return func() error {
		if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &restore); err != nil {
			return fmt.Errorf("restoring terminal attributes: %w", err)
		}
		return nil
	}, nil
}
