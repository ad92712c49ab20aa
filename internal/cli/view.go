package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/pkg/store"
)

type viewOpts struct {
	demo    int
	logFile string
}

// viewCommand opens a board in the terminal. The mouse drags notes and the
// canvas; the wheel and +/- zoom.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view <board>",
		Short: "Open a board in the terminal",
		Long: `Open a board in an interactive terminal view.

  drag a note      move it; drop it on another note to stack them
  click a note     open it (or its stack)
  drag the board   pan            wheel, + and -   zoom
  arrow keys       pan            0 or double click  reset the view
  n                rename the opened stack
  x                delete the opened note
  r                reload the board
  q                quit

Moves are written to the store in the background. Stacks are saved locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.demo > 0 {
				st := store.NewMemory()
				items := generateItems(1, opts.demo, opts.demo/8)
				if err := st.PutItems(cmd.Context(), args[0], items); err != nil {
					return err
				}
				return c.runView(cmd.Context(), args[0], st, opts)
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				return c.runView(cmd.Context(), args[0], st, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.demo, "demo", 0, "view N generated notes in memory instead of the store")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the view is open")

	return cmd
}

func (c *CLI) runView(ctx context.Context, boardID string, st store.Store, opts viewOpts) error {
	// The terminal belongs to the view; logs go to a file or nowhere.
	logger, closeLog, err := viewLogger(opts.logFile, c.Logger.GetLevel())
	if err != nil {
		return err
	}
	defer closeLog()
	outer := c.Logger
	c.Logger = logger
	defer func() { c.Logger = outer }()

	queue := c.newQueue(st)
	m := newBoardModel(boardModelOptions{
		Board:  boardID,
		Config: *c.config(),
		Source: st,
		Store:  st,
		Writer: queue,
		State:  c.newStateStore(),
		Logger: logger,
		Ctx:    ctx,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, runErr := p.Run()

	if m.sess != nil {
		if err := m.sess.SaveState(context.Background()); err != nil {
			logger.Warn("could not save stacks", "err", err)
		}
	}
	stats := c.drain(queue)

	if runErr != nil {
		return runErr
	}
	if m.err != nil {
		return m.err
	}
	if m.sess != nil {
		printSuccess("Closed %s", StyleValue.Render(boardID))
		fmt.Fprintln(stdout, boardStats(len(m.sess.Items()), 0, len(m.sess.Stacks())))
		printKeyValue("written", fmt.Sprint(stats.Written))
		if lost := stats.Failed + stats.Dropped; lost > 0 {
			printWarning("%d position updates were not stored", lost)
		}
	}
	return nil
}

func viewLogger(path string, level log.Level) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l := newLogger(f, level)
	l.SetTimeFormat(time.RFC3339)
	return l, func() { f.Close() }, nil
}
