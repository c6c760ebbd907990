package radio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding reports that bytes read from the medium do not form
// valid UTF-8 and lossy decoding is not enabled.
var ErrInvalidEncoding = errors.New("radio: message is not valid UTF-8")

const readBufSize = 4096

// A FileEndpoint is an Endpoint backed by a virtual-link device file, such
// as the radio file exposed by the nexus filesystem.
type FileEndpoint struct {
	f     *os.File
	lossy bool

	buf []byte
}

// An Option configures a FileEndpoint at open time.
type Option func(*FileEndpoint)

// WithLossyDecoding makes Read substitute U+FFFD for invalid bytes instead
// of failing. Bad links corrupt bits on the medium; the TDMA layer treats
// a garbled message as unrecognized traffic, so decoding must not be the
// step that kills the process.
func WithLossyDecoding() Option {
	return func(e *FileEndpoint) {
		e.lossy = true
	}
}

// Open opens the virtual-link file at path for reading and writing.
func Open(path string, opts ...Option) (*FileEndpoint, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("radio: open %s: %w", path, err)
	}

	e := &FileEndpoint{
		f:   f,
		buf: make([]byte, readBufSize),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Read drains the pending message, or returns "" when nothing is pending.
func (e *FileEndpoint) Read() (string, error) {
	n, err := e.f.Read(e.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("radio: read: %w", err)
	}

	if n == 0 {
		return "", nil
	}

	msg := string(e.buf[:n])
	if !utf8.ValidString(msg) {
		if !e.lossy {
			return "", ErrInvalidEncoding
		}
		msg = strings.ToValidUTF8(msg, "�")
	}

	return msg, nil
}

// Write publishes msg as the outgoing message.
func (e *FileEndpoint) Write(msg string) error {
	if _, err := e.f.WriteString(msg); err != nil {
		return fmt.Errorf("radio: write: %w", err)
	}
	return nil
}

// Flush commits the outgoing message to the medium.
func (e *FileEndpoint) Flush() error {
	if err := e.f.Sync(); err != nil {
		return fmt.Errorf("radio: flush: %w", err)
	}
	return nil
}

// Close releases the link file.
func (e *FileEndpoint) Close() error {
	return e.f.Close()
}
