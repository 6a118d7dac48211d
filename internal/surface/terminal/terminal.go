// Package terminal runs a line-oriented chat over a reader and a writer,
// normally stdin and stdout.
//
// Every line is submitted to the session verbatim, except for these surface
// commands (matched after trimming, case-insensitive):
//
//	bye, exit            end the chat
//	/history [n]         print the last n transcript entries (default 10)
//	/commands [prefix]   list the commands starting with prefix
//
// Blank lines are ignored.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrWong99/infobot/internal/completion"
	"github.com/MrWong99/infobot/internal/intent"
	"github.com/MrWong99/infobot/internal/session"
	"github.com/MrWong99/infobot/internal/transcript"
)

// UserPrefix labels user entries.
const UserPrefix = "You"

// DefaultHistory is the number of entries /history prints without an argument.
const DefaultHistory = 10

// REPL is a read-eval-print loop bound to one session.
type REPL struct {
	session   *session.Session
	in        io.Reader
	out       io.Writer
	completer *completion.Completer
}

// Option configures a REPL.
type Option func(*REPL)

// WithCompleter replaces the completer used for /commands and the "did you
// mean" hint. The default completes [intent.Commands].
func WithCompleter(c *completion.Completer) Option {
	return func(r *REPL) { r.completer = c }
}

// New returns a REPL that reads lines from in and writes the chat to out.
func New(s *session.Session, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		session:   s,
		in:        in,
		out:       out,
		completer: completion.New(intent.Commands()),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FormatEntry renders e as "<speaker>: <text>".
func FormatEntry(botName string, e transcript.Entry) string {
	who := UserPrefix
	if e.Speaker == transcript.Bot {
		who = botName
	}
	return who + ": " + e.Text
}

// Run reads lines until the user quits, the input ends or ctx is cancelled.
// Quitting and end of input return nil.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	r.say("Hello! Type 'help' to see what I can do, or 'bye' to quit.")
	for {
		r.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("terminal: read input: %w", err)
					}
				default:
				}
				return nil
			}
			if !r.handle(ctx, line) {
				return nil
			}
		}
	}
}

// handle processes one line and reports whether the loop should continue.
func (r *REPL) handle(ctx context.Context, line string) bool {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch {
	case cmd == "":
		return true
	case cmd == "bye" || cmd == "exit":
		r.say("Goodbye!")
		return false
	case cmd == "/history" || strings.HasPrefix(cmd, "/history "):
		r.history(strings.TrimSpace(strings.TrimPrefix(cmd, "/history")))
		return true
	case cmd == "/commands" || strings.HasPrefix(cmd, "/commands "):
		r.commands(strings.TrimSpace(strings.TrimPrefix(cmd, "/commands")))
		return true
	}

	_, bot, res := r.session.Submit(ctx, line)
	fmt.Fprintln(r.out, FormatEntry(r.session.BotName(), bot))
	if res.Intent == intent.Unknown {
		if s, ok := r.completer.SuggestAny(intent.Tokenize(line)); ok {
			r.say(fmt.Sprintf("Did you mean %q?", s))
		}
	}
	return true
}

func (r *REPL) history(arg string) {
	n := DefaultHistory
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			r.say("Usage: /history [n] with n a positive number.")
			return
		}
		n = v
	}
	name := r.session.BotName()
	for e := range r.session.Transcript().Tail(n) {
		fmt.Fprintf(r.out, "  [%d %s] %s\n", e.Ordinal, e.At.Format("15:04:05"), FormatEntry(name, e))
	}
}

func (r *REPL) commands(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		r.say(fmt.Sprintf("No command starts with %q.", prefix))
		return
	}
	r.say("Commands: " + strings.Join(matches, ", "))
}

// say prints a surface message. It is not part of the transcript.
func (r *REPL) say(text string) {
	fmt.Fprintf(r.out, "%s: %s\n", r.session.BotName(), text)
}

func (r *REPL) prompt() {
	fmt.Fprint(r.out, UserPrefix+": ")
}
