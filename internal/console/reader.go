package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// LineReader reads operator input one line at a time. It is shared by all
// sessions; each ReadLine call holds the reader for exactly one line.
type LineReader struct {
	mu     sync.Mutex
	reader *bufio.Reader
	done   bool
}

// NewLineReader wraps r (usually os.Stdin).
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line without its line terminator.
// It returns io.EOF once the input is exhausted.
func (l *LineReader) ReadLine() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return "", io.EOF
	}

	line, err := l.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		l.done = true
		if line == "" {
			return "", io.EOF
		}
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
