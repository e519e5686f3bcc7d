// Package output writes enumeration results to files and the console.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"crtsubs/features/enumerator"
)

var (
	ErrOpenOutput  = errors.New("failed to open output file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// Mode selects how a FileSink opens its file.
type Mode int

const (
	// Overwrite truncates the file on every write.
	Overwrite Mode = iota
	// Append adds each write at the end of the file.
	Append
)

func (m Mode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// FileSink writes one hostname per line. The file is opened and closed on
// each Write so a partial run leaves every completed domain on disk.
type FileSink struct {
	path string
	mode Mode
}

func NewFileSink(path string, mode Mode) *FileSink {
	return &FileSink{path: path, mode: mode}
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Write(result *enumerator.Result) error {
	return WriteLines(s.path, s.mode, result.Subdomains)
}

// WriteLines writes lines to path, each terminated by a newline.
func WriteLines(path string, mode Mode, lines []string) error {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenOutput, path, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}

	return f.Close()
}

// NewHostnames appends the hostnames first seen during a watch pass.
func (s *FileSink) NewHostnames(_ string, hosts []string) error {
	return WriteLines(s.path, Append, hosts)
}
