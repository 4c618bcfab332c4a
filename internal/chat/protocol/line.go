package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
)

// DefaultMaxLineSize - default limit for single request line, excluding line terminator.
const DefaultMaxLineSize = 64 * 1024

// LineReader - reads newline-terminated frames from underlying stream.
// It hides partial reads: a line is returned only when its terminator arrived,
// or when the stream ended after unterminated data.
type LineReader struct {
	r   *bufio.Reader
	max int
	buf []byte
}

// NewLineReader - builds LineReader which rejects lines longer than maxLineSize bytes.
// Non-positive maxLineSize means DefaultMaxLineSize.
func NewLineReader(r io.Reader, maxLineSize int) *LineReader {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	return &LineReader{
		r:   bufio.NewReader(r),
		max: maxLineSize,
	}
}

// ReadLine - returns next line without "\n" or "\r\n" terminator.
// The returned slice is valid until the next call.
// When the line exceeds the limit, it is discarded up to its terminator and ErrLineTooLong is returned,
// so the caller may continue reading. io.EOF is returned only when no data is left.
func (lr *LineReader) ReadLine() ([]byte, error) {
	lr.buf = lr.buf[:0]
	tooLong := false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		if !tooLong {
			lr.buf = append(lr.buf, chunk...)
			if lr.exceeds(lr.buf, err == nil) {
				tooLong = true
				lr.buf = lr.buf[:0]
			}
		}

		switch {
		case err == nil:
			if tooLong {
				return nil, ErrLineTooLong
			}
			return trimEOL(lr.buf), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if tooLong {
				return nil, ErrLineTooLong
			}
			if len(lr.buf) > 0 {
				return trimEOL(lr.buf), nil
			}
			return nil, io.EOF
		default:
			return nil, err
		}
	}
}

// exceeds - reports whether line is over the limit.
// An incomplete line may end with '\r' whose '\n' is not read yet, that byte is not counted.
func (lr *LineReader) exceeds(line []byte, complete bool) bool {
	n := len(trimEOL(line))
	if !complete && n > 0 && line[n-1] == '\r' {
		n--
	}
	return n > lr.max
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}

// MarshalLine - encodes value as single JSON line terminated with "\n".
func MarshalLine(v json.Marshaler) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}
