package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
)

// DefaultPrompt is printed before every line.
const DefaultPrompt = "taskdeck> "

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithInput sets the line source. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(repl *REPL) { repl.input = r }
}

// WithOutput sets where prompts and errors go. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(repl *REPL) { repl.output = w }
}

// WithHistory records lines in h.
func WithHistory(h *History) Option {
	return func(repl *REPL) { repl.history = h }
}

// WithPrompt overrides DefaultPrompt.
func WithPrompt(p string) Option {
	return func(repl *REPL) { repl.prompt = p }
}

// New creates a REPL that hands every non built-in line to exec.
func New(exec Executor, completer *Completer, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: completer,
		history:   NewHistory("", DefaultHistorySize),
	}
	if r.completer == nil {
		r.completer = NewCompleter(nil)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input,
// and ctx.Err() once ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.output, r.prompt)

		if !scanner.Scan() {
			fmt.Fprintln(r.output)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			r.help(args[1:])
			continue
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

// help lists the commands matching the optional prefix.
func (r *REPL) help(args []string) {
	prefix := strings.Join(args, " ")
	suggestions := r.completer.Complete(prefix)
	if len(suggestions) == 0 {
		fmt.Fprintf(r.output, "No commands match %q\n", prefix)
		return
	}
	for _, s := range suggestions {
		fmt.Fprintln(r.output, "  "+s)
	}
}
