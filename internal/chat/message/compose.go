package message

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrContentTooLong - returns by Compose when source exceeds the limit.
var ErrContentTooLong = errors.New("message.Compose: content is too long")

// Compose - reads message content from r, e.g. piped into command line client.
// Invalid unicode sequences and control characters are dropped, except line feed and tab,
// CR LF pairs become LF and trailing line feeds are trimmed.
// Non-positive limit means no limit, otherwise limit is applied to result length in bytes.
func Compose(r io.Reader, limit int) (string, error) {
	src := bufio.NewReader(r)
	content := strings.Builder{}
	for {
		ch, size, err := src.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("message.Compose: %w", err)
		}
		if ch == utf8.RuneError && size == 1 {
			// drop
			continue
		}
		switch {
		case ch == '\n', ch == '\t':
		case unicode.IsControl(ch):
			// drop, CR also goes here
			continue
		}
		content.WriteRune(ch)
	}
	result := strings.TrimRight(content.String(), "\n")
	if limit > 0 && len(result) > limit {
		return "", ErrContentTooLong
	}
	return result, nil
}
