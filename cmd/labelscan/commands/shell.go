package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/query"
	"github.com/usestring/labelscan/internal/render"
	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/types"
)

const shellHelp = `Commands:
  open <file.pdf>          choose the document to extract
  submit                   upload it (runs in the background)
  wait                     block until the upload finishes
  show                     print the current screen
  export [json|xlsx] [dir] save the last successful result
  query <jq expression>    query the last successful result
  history                  list recent attempts
  clear                    forget the document and result
  help                     show this list
  quit                     leave the shell
`

var shellCommands = []string{
	"open", "submit", "wait", "show", "export", "query", "history", "clear", "help", "quit", "exit",
}

// shell: interactive session over one workflow.
func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: open a PDF, submit it, inspect and export the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(cmd.Context(), cmd.OutOrStdout())
			return s.run(s.openLineReader(cmd.InOrStdin()))
		},
	}
}

type session struct {
	ctx context.Context
	m   *workflow.Machine

	// mu serializes writes from the prompt loop and the upload goroutine.
	mu  sync.Mutex
	out io.Writer

	pending <-chan workflow.State
}

func newSession(ctx context.Context, out io.Writer) *session {
	s := &session{ctx: ctx, out: out}
	s.m = appCtx.NewMachine(workflow.WithObserver(s.onTransition))
	return s
}

func (s *session) onTransition(tr workflow.Transition) {
	switch {
	case workflow.Busy(tr.To):
		s.printf("%s\n", render.RenderState(tr.To).Status)
	case workflow.Terminal(tr.To):
		s.printView(tr.To)
	}
}

// lineReader returns one input line per Prompt. It returns io.EOF when
// input ends and liner.ErrPromptAborted when the user abandons the line.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// openLineReader edits lines on a terminal and reads plain lines otherwise.
func (s *session) openLineReader(in io.Reader) lineReader {
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		ln := liner.NewLiner()
		ln.SetCtrlCAborts(true)
		ln.SetTabCompletionStyle(liner.TabPrints)
		ln.SetCompleter(completeCommand)
		return ln
	}
	return &scanReader{scanner: bufio.NewScanner(in), printf: s.printf}
}

// completeCommand completes the command word of a shell line.
func completeCommand(line string) []string {
	if strings.ContainsRune(line, ' ') {
		return nil
	}
	var out []string
	for _, c := range shellCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

// scanReader reads lines from a pipe or file.
type scanReader struct {
	scanner *bufio.Scanner
	printf  func(format string, args ...any)
}

func (r *scanReader) Prompt(prompt string) (string, error) {
	r.printf("%s", prompt)
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

func (s *session) run(lr lineReader) error {
	s.printf("labelscan shell. Type help for commands.\n")
	s.printView(s.m.State())

	var err error
	for {
		var line string
		line, err = lr.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			err = nil
			continue
		}
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lr.AppendHistory(line)

		name, rest, _ := strings.Cut(line, " ")
		quit, cmdErr := s.dispatch(strings.ToLower(name), strings.TrimSpace(rest))
		if cmdErr != nil {
			s.printf("⚠ %v\n", cmdErr)
		}
		if quit {
			break
		}
	}

	closeErr := lr.Close()
	// let an upload in flight finish printing
	s.wait()
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return errors.Join(err, closeErr)
}

func (s *session) dispatch(name, arg string) (bool, error) {
	switch name {
	case "open":
		if arg == "" {
			return false, fmt.Errorf("usage: open <file.pdf>")
		}
		file, err := types.LoadFile(arg)
		if err != nil {
			return false, err
		}
		if err := s.m.Select(file); err != nil {
			return false, err
		}
		s.printView(workflow.FileSelected{File: file})

	case "submit":
		done, err := s.m.Submit(s.ctx)
		if err != nil {
			return false, err
		}
		s.pending = done

	case "wait":
		s.wait()

	case "show":
		s.printView(s.m.State())

	case "export":
		format, dir := export.FormatJSON, ""
		fields := strings.Fields(arg)
		if len(fields) > 0 {
			format = export.Format(fields[0])
		}
		if len(fields) > 1 {
			dir = fields[1]
		}
		path, err := appCtx.Export(s.m, format, dir)
		if err != nil {
			return false, err
		}
		s.printf("Saved %s\n", path)

	case "query":
		if arg == "" {
			return false, fmt.Errorf("usage: query <jq expression>")
		}
		ok, err := s.m.Succeeded()
		if err != nil {
			return false, err
		}
		res, err := appCtx.Query.Query(ok, arg, 0)
		if err != nil {
			return false, err
		}
		text, err := query.Format(res.Values)
		if err != nil {
			return false, err
		}
		s.printf("%s", text)
		for _, e := range res.Errors {
			s.printf("jq: %s\n", e)
		}

	case "history":
		s.printHistory()

	case "clear":
		if err := s.m.Clear(); err != nil {
			return false, err
		}
		s.printView(workflow.Idle{})

	case "help", "?":
		s.printf("%s", shellHelp)

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func (s *session) wait() {
	if s.pending == nil {
		return
	}
	select {
	case <-s.pending:
	case <-s.ctx.Done():
	}
	s.pending = nil
}

func (s *session) printHistory() {
	attempts := appCtx.History.Recent()
	if len(attempts) == 0 {
		s.printf("No attempts yet.\n")
		return
	}

	var sb strings.Builder
	for _, a := range attempts {
		detail := a.Detail
		if r := []rune(detail); len(r) > 60 {
			detail = string(r[:57]) + "..."
		}
		fmt.Fprintf(&sb, "%s  %-15s  %-24s  %6s  %s\n",
			a.Finished.Format(time.TimeOnly),
			a.Outcome,
			a.File,
			a.Duration().Round(time.Millisecond),
			detail,
		)
	}
	s.printf("%s", sb.String())
}

func (s *session) printView(st workflow.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = render.WriteText(s.out, render.RenderState(st), render.Options{Width: renderWide})
}

func (s *session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
