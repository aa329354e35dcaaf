package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/runnerr0/hydrolog/internal/watcher"
)

// Execute implements the go-flags Commander interface for WatchCommand.
func (c *WatchCommand) Execute(args []string) error {
	return withSession(c.globals, func(_ context.Context, s *session) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return c.executeWithSession(ctx, s)
	})
}

func (c *WatchCommand) executeWithSession(ctx context.Context, s *session) error {
	debounce, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return fmt.Errorf("invalid --debounce %q: %w", c.Debounce, err)
	}

	w, err := watcher.New(s.dbPath, debounce)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	s.log.Info("watching database", "path", s.dbPath, "debounce", debounce)
	return watchLoop(ctx, os.Stdout, s, w.Changes(), w.Errors(), jsonOutput(c.globals))
}

// watchLoop renders the timeline once, then again after every change until
// ctx is done or the change channel closes.
func watchLoop(ctx context.Context, out io.Writer, s *session, changes <-chan watcher.Change, errs <-chan error, asJSON bool) error {
	render := func(reason string) error {
		if !asJSON {
			header := fmt.Sprintf("── %s (%s) ", s.now().In(s.svc.Location()).Format("15:04:05"), reason)
			fmt.Fprintln(out, header+strings.Repeat("─", max(0, 40-len([]rune(header)))))
		}
		return renderTimeline(ctx, out, s, asJSON)
	}

	if err := render("start"); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			s.log.Debug("database changed", "files", c.Files)
			if err := render("changed"); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn("watcher error", "error", err)
		}
	}
}
