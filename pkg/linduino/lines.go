package linduino

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineLength bounds one input line. Longer lines are consumed up to their
// newline and reported as truncated.
const MaxLineLength = 4096

// LineReader reads newline-terminated lines of bounded length.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// Next returns the next line without its line terminator. When the line is
// longer than MaxLineLength only its first MaxLineLength bytes are returned and
// truncated is true; the rest of the line is discarded. io.EOF is returned when
// no input is left.
func (l *LineReader) Next() (line string, truncated bool, err error) {
	chunk, err := l.r.ReadSlice('\n')
	line = string(chunk)
	for errors.Is(err, bufio.ErrBufferFull) {
		truncated = true
		_, err = l.r.ReadSlice('\n')
	}

	if err == io.EOF && (line != "" || truncated) {
		err = nil
	}
	if err != nil {
		return "", false, err
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, truncated, nil
}
