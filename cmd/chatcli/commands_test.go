package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wtask/chatrelay/internal/chat"
)

func startServer(test *testing.T) *chat.Server {
	test.Helper()
	s, err := chat.NewServer("127.0.0.1:0", chat.WithWorkers(2))
	require.NoError(test, err)
	done := make(chan error, 1)
	go func() {
		done <- s.Run()
	}()
	test.Cleanup(func() {
		s.Shutdown()
		<-done
	})
	return s
}

func execute(ctx context.Context, stdin string, args ...string) (code int, stdout, stderr string) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	code = run(ctx, append([]string{"-no-color"}, args...), strings.NewReader(stdin), out, errOut)
	return code, out.String(), errOut.String()
}

func TestRun_SendAndFetch(test *testing.T) {
	req := require.New(test)
	s := startServer(test)
	addr := s.Addr().String()
	ctx := context.Background()

	code, stdout, stderr := execute(ctx, "", "-addr", addr, "send", "-author", "ann", "hello", "everyone")
	req.Equal(exitOK, code, stderr)
	req.Contains(stdout, "message sent by ann")

	code, _, stderr = execute(ctx, "line one\r\nline two\n", "-addr", addr, "send", "-author", "bob")
	req.Equal(exitOK, code, stderr)

	req.Equal("hello everyone", s.History().Since(0)[0].Content)
	req.Equal("line one\nline two", s.History().Since(1)[0].Content)

	code, stdout, stderr = execute(ctx, "", "-addr", addr, "fetch")
	req.Equal(exitOK, code, stderr)
	req.Contains(stdout, "hello everyone")
	req.Contains(stdout, "bob")

	code, stdout, _ = execute(ctx, "", "-addr", addr, "fetch", "-since", "1")
	req.Equal(exitOK, code)
	req.NotContains(stdout, "hello everyone")

	code, stdout, _ = execute(ctx, "", "-addr", addr, "fetch", "-since", "5")
	req.Equal(exitOK, code)
	req.Contains(stdout, "no messages")
}

func TestRun_Watch(test *testing.T) {
	req := require.New(test)
	s := startServer(test)
	s.History().Append("ann", "first\nsecond")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, stdout, stderr := execute(ctx, "", "-addr", s.Addr().String(), "watch", "-interval", "10ms")
	req.Equal(exitOK, code, stderr)
	req.Equal("[0] ann first second\n", stdout)
}

func TestRun_Usage(test *testing.T) {
	req := require.New(test)
	ctx := context.Background()

	code, _, stderr := execute(ctx, "", "shout")
	req.Equal(exitUsage, code)
	req.Contains(stderr, "fetch, send, watch")

	code, _, _ = execute(ctx, "", "send", "-author", "", "hi")
	req.Equal(exitUsage, code)

	code, _, _ = execute(ctx, "", "-help")
	req.Equal(exitOK, code)
}

func TestRun_ConnectionRefused(test *testing.T) {
	s := startServer(test)
	addr := s.Addr().String()
	require.NoError(test, s.Shutdown())

	code, _, stderr := execute(context.Background(), "", "-addr", addr, "-timeout", "200ms", "fetch")
	require.Equal(test, exitError, code)
	require.Contains(test, stderr, "fetch")
}
