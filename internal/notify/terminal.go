package notify

import (
	"io"
	"os"
)

var ttyPath = "/dev/tty"

// Terminal returns the writer the bell should ring on: the controlling
// terminal, or stderr when there is none. Stdout carries the alert lines
// and must stay free of control bytes. Call done when finished with it.
func Terminal() (w io.Writer, done func()) {
	tty, err := os.OpenFile(ttyPath, os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr, func() {}
	}
	return tty, func() { _ = tty.Close() }
}
