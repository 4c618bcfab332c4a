package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wtask/chatrelay/internal/chat/message"
)

func TestSend_RoundTrip(test *testing.T) {
	cases := []Send{
		{Author: "a", Content: "hi"},
		{Author: "", Content: ""},
		{Author: "Ann \"the\" Author", Content: `back\slash and "quotes"`},
		{Author: "世界", Content: "line1\nline2\r\n\ttab ⌘"},
		{Author: "<html>", Content: "a & b > c"},
		{Author: "nul", Content: "zero\x00byte"},
	}
	for _, c := range cases {
		line, err := MarshalLine(c)
		require.NoError(test, err)
		require.Equal(test, 1, strings.Count(string(line), "\n"), "payload must stay single line")

		decoded := DecodeRequest(line[:len(line)-1])
		require.Equal(test, c, decoded)
	}
}

func TestFetchSince_RoundTrip(test *testing.T) {
	for _, since := range []uint64{0, 1, 123, ^uint64(0)} {
		line, err := MarshalLine(FetchSince{Since: since})
		require.NoError(test, err)
		require.Equal(test, FetchSince{Since: since}, DecodeRequest(line))
	}
}

func TestDecodeRequest_Wire(test *testing.T) {
	cases := []struct {
		line     string
		expected Request
	}{
		{`{"Send":{"author":"a","content":"hi"}}`, Send{Author: "a", Content: "hi"}},
		{`{"Send":{"content":"hi","author":"a","extra":1}}`, Send{Author: "a", Content: "hi"}},
		{` {"FetchSince": 7} `, FetchSince{Since: 7}},
		{`{"Invalid":"client gave up"}`, InvalidRequest{Reason: "client gave up"}},
		{`garbage`, InvalidRequest{Reason: ReasonNotObject}},
		{``, InvalidRequest{Reason: ReasonNotObject}},
		{`"Invalid"`, InvalidRequest{Reason: ReasonNotObject}},
		{`null`, InvalidRequest{Reason: ReasonNotObject}},
		{`{}`, InvalidRequest{Reason: ReasonNotObject}},
		{`{"Send":{"author":"a","content":"b"},"FetchSince":1}`, InvalidRequest{Reason: ReasonNotObject}},
		{`{"Delete":1}`, InvalidRequest{Reason: ReasonUnknownVariant}},
		{`{"Send":{"author":"a"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":{"content":"b"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":{"author":1,"content":"b"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":null}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":"text"}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"FetchSince":-1}`, InvalidRequest{Reason: ReasonBadFetchSince}},
		{`{"FetchSince":1.5}`, InvalidRequest{Reason: ReasonBadFetchSince}},
		{`{"FetchSince":"1"}`, InvalidRequest{Reason: ReasonBadFetchSince}},
		{`{"FetchSince":null}`, InvalidRequest{Reason: ReasonBadFetchSince}},
		{`{"FetchSince":18446744073709551616}`, InvalidRequest{Reason: ReasonBadFetchSince}},
		{`{"Send":{"AUTHOR":"a","CONTENT":"b"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":{"author":"a","content":"b","Author":"x"}}`, Send{Author: "a", Content: "b"}},
		{`{"Send":{"author":"a","author":"x","content":"b"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"Send":{"author":null,"content":"b"}}`, InvalidRequest{Reason: ReasonBadSend}},
		{`{"send":{"author":"a","content":"b"}}`, InvalidRequest{Reason: ReasonUnknownVariant}},
		{`{"FetchSince":1,"FetchSince":2}`, InvalidRequest{Reason: ReasonNotObject}},
		{`{"FetchSince":1} {"FetchSince":2}`, InvalidRequest{Reason: ReasonNotObject}},
		{`{"FetchSince":1`, InvalidRequest{Reason: ReasonNotObject}},
		{`{"Invalid":null}`, InvalidRequest{Reason: ReasonNotObject}},
		{"{\"Send\":{\"author\":\"a\",\"content\":\"\xff\xfe\"}}", InvalidRequest{Reason: ReasonNotUTF8}},
	}
	for _, c := range cases {
		require.Equal(test, c.expected, DecodeRequest([]byte(c.line)), "line: %s", c.line)
	}
}

func TestResponse_Wire(test *testing.T) {
	cases := []struct {
		response Response
		expected string
	}{
		{Acknowledged{}, `{"MessageAdded":[]}` + "\n"},
		{Invalid{}, `"Invalid"` + "\n"},
		{Messages(nil), `{"Messages":[]}` + "\n"},
		{
			Messages{{ID: 0, Author: "a", Content: "hi"}},
			`{"Messages":[{"id":0,"author":"a","content":"hi"}]}` + "\n",
		},
	}
	for _, c := range cases {
		line, err := MarshalLine(c.response)
		require.NoError(test, err)
		require.Equal(test, c.expected, string(line))

		decoded, err := DecodeResponse(line[:len(line)-1])
		require.NoError(test, err)
		if list, ok := c.response.(Messages); ok && list == nil {
			require.Equal(test, Messages{}, decoded)
			continue
		}
		require.Equal(test, c.response, decoded)
	}
}

func TestDecodeResponse_Unknown(test *testing.T) {
	for _, line := range []string{`"Ok"`, `garbage`, `{}`, `{"Deleted":[]}`, `{"Messages":"x"}`} {
		_, err := DecodeResponse([]byte(line))
		require.ErrorIs(test, err, ErrUnknownResponse, "line: %s", line)
	}
}

func TestDecodeResponse_Messages(test *testing.T) {
	decoded, err := DecodeResponse([]byte(`{"Messages":[{"id":3,"author":"b","content":"yo"},{"id":4,"author":"c","content":""}]}`))
	require.NoError(test, err)
	require.Equal(test, Messages{
		{ID: 3, Author: "b", Content: "yo"},
		{ID: 4, Author: "c", Content: ""},
	}, decoded)
}

// chunkedReader - returns data by small pieces to emulate partial socket reads.
type chunkedReader struct {
	data  []byte
	chunk int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func readAll(test *testing.T, lr *LineReader) (lines []string, errs []error) {
	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return lines, errs
		}
		if err != nil {
			errs = append(errs, err)
			lines = append(lines, "<error>")
			continue
		}
		lines = append(lines, string(line))
	}
}

func TestLineReader_PartialReads(test *testing.T) {
	input := "first\r\nsecond\n\nthird without terminator"
	lr := NewLineReader(&chunkedReader{data: []byte(input), chunk: 3}, 0)
	lines, errs := readAll(test, lr)
	require.Empty(test, errs)
	require.Equal(test, []string{"first", "second", "", "third without terminator"}, lines)
}

func TestLineReader_TooLong(test *testing.T) {
	long := strings.Repeat("x", 10000)
	input := "short\n" + long + "\nafter\n" + long
	lr := NewLineReader(&chunkedReader{data: []byte(input), chunk: 512}, 16)
	lines, errs := readAll(test, lr)
	require.Equal(test, []string{"short", "<error>", "after", "<error>"}, lines)
	require.Len(test, errs, 2)
	for _, err := range errs {
		require.ErrorIs(test, err, ErrLineTooLong)
	}
}

func TestLineReader_ExactLimit(test *testing.T) {
	lr := NewLineReader(strings.NewReader("1234\r\n12345\n"), 4)
	line, err := lr.ReadLine()
	require.NoError(test, err)
	require.Equal(test, "1234", string(line))

	_, err = lr.ReadLine()
	require.ErrorIs(test, err, ErrLineTooLong)

	_, err = lr.ReadLine()
	require.ErrorIs(test, err, io.EOF)
}

func TestMarshalLine_MessageFields(test *testing.T) {
	line, err := MarshalLine(Messages{message.Message{ID: 9, Author: "x", Content: "y"}})
	require.NoError(test, err)
	require.Contains(test, string(line), `"id":9`)
}
