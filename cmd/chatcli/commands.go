package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/wtask/chatrelay/internal/chat/client"
	"github.com/wtask/chatrelay/internal/chat/message"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// maxContentSize - content is limited by server line size, leave room for JSON envelope.
const maxContentSize = 60 * 1024

var (
	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	errNoAuthor = errors.New("author is required")
)

type globals struct {
	addr    string
	timeout time.Duration
}

// run - parses arguments and executes command, returns process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	g := globals{}
	fs := flag.NewFlagSet(BinaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.addr, "addr", lo.CoalesceOrEmpty(os.Getenv("CHAT_ADDR"), "127.0.0.1:20000"), "Chat server address")
	fs.DurationVar(&g.timeout, "timeout", 5*time.Second, "Request timeout")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Chat relay client\n\n\t%s [options] send|fetch|watch [command options]\nOptions:\n\n", BinaryName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *noColor {
		color.Disable()
	}

	commands := map[string]func(context.Context, globals, []string, io.Reader, io.Writer) error{
		"send":  send,
		"fetch": fetch,
		"watch": watch,
	}
	name := fs.Arg(0)
	command, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q, expected one of: %s\n", name, strings.Join(names(commands), ", "))
		fs.Usage()
		return exitUsage
	}
	if err := command(ctx, g, fs.Args()[1:], stdin, stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, color.Red.Sprintf("%s %s: %v", BinaryName, name, err))
		if errors.Is(err, errNoAuthor) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func names[T any](commands map[string]T) []string {
	list := lo.Keys(commands)
	slices.Sort(list)
	return list
}

func connect(ctx context.Context, g globals) (*client.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return client.Dial(dialCtx, g.addr, client.WithTimeout(g.timeout))
}

// send - sends message, content is taken from arguments or from stdin.
func send(ctx context.Context, g globals, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(stdout)
	author := fs.String("author", os.Getenv("USER"), "Message author")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *author == "" {
		return errNoAuthor
	}

	content := strings.Join(fs.Args(), " ")
	if fs.NArg() == 0 {
		composed, err := message.Compose(stdin, maxContentSize)
		if err != nil {
			return err
		}
		content = composed
	}

	c, err := connect(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Send(*author, content); err != nil {
		return err
	}
	fmt.Fprintln(stdout, color.Green.Sprintf("message sent by %s", *author))
	return nil
}

// fetch - prints history as table.
func fetch(ctx context.Context, g globals, args []string, _ io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stdout)
	since := fs.Uint64("since", 0, "ID of the first message")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := connect(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()
	messages, err := c.FetchSince(*since)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(stdout, color.Yellow.Sprint("no messages"))
		return nil
	}
	renderTable(stdout, messages)
	return nil
}

// watch - polls server and prints new messages until interrupted.
func watch(ctx context.Context, g globals, args []string, _ io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stdout)
	interval := fs.Duration("interval", time.Second, "Polling interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("invalid interval (%v)", *interval)
	}

	c, err := connect(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		fresh, err := c.Sync()
		if err != nil {
			return err
		}
		for _, m := range fresh {
			fmt.Fprint(stdout, formatMessage(m))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func renderTable(w io.Writer, messages []message.Message) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Author", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(lo.Map(messages, func(m message.Message, _ int) []string {
		return []string{strconv.FormatUint(m.ID, 10), m.Author, m.Content}
	}))
	table.Render()
}

// formatMessage - formats chat message as single line.
func formatMessage(m message.Message) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	return fmt.Sprintf("[%d] %s %s\n", m.ID, color.Cyan.Sprint(m.Author), content)
}
