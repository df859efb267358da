package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tally/internal/tracker"
)

// Session binds a tracker to a line-oriented input and a text output.
// Every render pass prints the rebuilt view.
type Session struct {
	app    *tracker.App
	out    io.Writer
	logger *slog.Logger
}

func NewSession(app *tracker.App, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{app: app, out: out, logger: logger}
}

// Execute runs one input line against the tracker and reports whether the
// user asked to quit. It must run on the runtime loop goroutine.
func (s *Session) Execute(line string) (quit bool) {
	cmd, err := Parse(line)
	if err != nil {
		s.errorf(err)
		return false
	}

	switch cmd.Verb {
	case VerbAdd:
		if _, err := s.app.Add(cmd.Add); err != nil {
			s.errorf(err)
		}
	case VerbDelete:
		s.app.Delete(cmd.ID)
	case VerbFilter:
		if err := s.app.SetFilter(cmd.Filter); err != nil {
			s.errorf(err)
		}
	case VerbSort:
		if err := s.app.SetSort(cmd.Sort); err != nil {
			s.errorf(err)
		}
	case VerbShow:
		s.app.Runtime().Render()
	case VerbHelp:
		fmt.Fprint(s.out, Help())
	case VerbQuit:
		return true
	}
	return false
}

func (s *Session) errorf(err error) {
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// Run reads commands from in until quit, end of input or ctx
// cancellation. Lines are read on a separate goroutine and posted to the
// tracker's runtime, whose loop runs on the calling goroutine.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := s.app.OnRender(func(v tracker.View) {
		fmt.Fprintln(s.out)
		if err := Render(s.out, v); err != nil {
			s.logger.Warn("Failed to render view", "error", err)
		}
	})
	defer unsubscribe()

	rt := s.app.Runtime()
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			line := sc.Text()
			if ctx.Err() != nil {
				return
			}
			rt.Post(func() {
				if s.Execute(line) {
					cancel()
				}
			})
		}
		if err := sc.Err(); err != nil {
			s.logger.Error("Failed to read input", "error", err)
		}
		rt.Post(cancel)
	}()

	fmt.Fprintln(s.out, "Type help for commands.")
	rt.Render()

	if err := rt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
